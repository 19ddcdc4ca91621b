package crypto

// HashKey is the repeating 8-byte key that protects the WLD string hash and
// the embedded bitmap filenames.
var HashKey = [8]byte{0x95, 0x3A, 0xC5, 0x2A, 0x95, 0x7A, 0x95, 0x6A}

// DecodeHash decodes a string-hash block using repeating XOR with HashKey.
//
//	out[i] = data[i] ^ HashKey[i%8]
//
// The cipher is its own inverse, so DecodeHash also encodes.
func DecodeHash(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ HashKey[i&7]
	}
	return out
}
