package crypto

import (
	"bytes"
	"testing"
)

func TestDecodeHash(t *testing.T) {
	plain := []byte("HUM_HS_DEF\x00HUMPE_DAG\x00")
	enc := DecodeHash(plain)
	if bytes.Equal(enc, plain) {
		t.Fatal("DecodeHash: output equals input")
	}
	for i := range enc {
		if x, y := enc[i]^plain[i], HashKey[i%8]; x != y {
			t.Fatalf("DecodeHash: byte %d key\nhave %#x\nwant %#x", i, x, y)
		}
	}
	if dec := DecodeHash(enc); !bytes.Equal(dec, plain) {
		t.Fatalf("DecodeHash: round trip\nhave %q\nwant %q", dec, plain)
	}
	if out := DecodeHash(nil); len(out) != 0 {
		t.Fatalf("DecodeHash(nil): have len %d, want 0", len(out))
	}
}
