package wld

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"eq-wld-decoder/internal/crypto"
)

// StringTable is the decoded string hash of a document. Strings are
// NUL-terminated Windows-1252 text addressed by byte offset.
type StringTable struct {
	raw []byte
}

// NewStringTable wraps an already decoded string hash.
func NewStringTable(raw []byte) StringTable { return StringTable{raw: raw} }

// Len returns the table size in bytes.
func (t StringTable) Len() int { return len(t.raw) }

// Get resolves ref. References that mean "no name" yield "" and a nil
// error; offsets outside the table yield ErrInvalidStringRef.
func (t StringTable) Get(ref StringRef) (string, error) {
	off, ok := ref.Offset()
	if !ok {
		return "", nil
	}
	if off >= len(t.raw) {
		return "", fmt.Errorf("wld: string offset %d outside table of %d bytes: %w", off, len(t.raw), ErrInvalidStringRef)
	}
	s := t.raw[off:]
	if end := bytes.IndexByte(s, 0); end >= 0 {
		s = s[:end]
	}
	return decodeText(s), nil
}

// decodeText converts Windows-1252 bytes to UTF-8.
func decodeText(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// decodeFileName decodes one XOR-protected, NUL-terminated BmInfo name.
func decodeFileName(b []byte) string {
	plain := crypto.DecodeHash(b)
	if end := bytes.IndexByte(plain, 0); end >= 0 {
		plain = plain[:end]
	}
	return decodeText(plain)
}
