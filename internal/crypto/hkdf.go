package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF derives outLen bytes from ikm with the given salt and
// domain-separation label (RFC 5869, SHA-256).
func HKDF(ikm, salt []byte, label string, outLen int) []byte {
	r := hkdf.New(sha256.New, ikm, salt, []byte(label))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(r, out); err != nil {
		// SHA-256 HKDF cannot fail for outLen <= 255*32.
		panic(err)
	}
	return out
}

// HKDFPair derives two 32-byte keys in one expand, used for root-key and
// chain-key splits.
func HKDFPair(ikm, salt []byte, label string) (a, b []byte) {
	out := HKDF(ikm, salt, label, 64)
	return out[:32], out[32:]
}
