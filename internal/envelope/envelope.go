package envelope

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// KeySize is the AEAD key size in bytes.
const KeySize = chacha20poly1305.KeySize

// NonceSize is the AEAD nonce size in bytes.
const NonceSize = chacha20poly1305.NonceSize

// Seal encrypts plaintext under key with a fresh random nonce. Nonce
// generation is internal and not overridable, so a nonce can never be reused
// with the same key.
func Seal(key, plaintext []byte) (nonce, ciphertext []byte, err error) {
	return SealWithAssociatedData(key, plaintext, nil)
}

// SealWithAssociatedData additionally authenticates ad (typically the
// ratchet header bytes), so tampering with the clear-text header is
// detected on open.
func SealWithAssociatedData(key, plaintext, ad []byte) (nonce, ciphertext []byte, err error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "envelope: bad key")
	}
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, errors.Wrap(err, "envelope: nonce")
	}
	return nonce, aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts and authenticates ciphertext. Any tag mismatch returns
// domain.ErrAuthentication and never partial plaintext; the tag check is
// constant time inside the AEAD.
func Open(key, nonce, ciphertext []byte) ([]byte, error) {
	return OpenWithAssociatedData(key, nonce, ciphertext, nil)
}

// OpenWithAssociatedData mirrors SealWithAssociatedData.
func OpenWithAssociatedData(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "envelope: bad key")
	}
	if len(nonce) != NonceSize {
		return nil, domain.ErrAuthentication
	}
	pt, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, domain.ErrAuthentication
	}
	return pt, nil
}

// HeaderBytes serialises a ratchet header for use as associated data:
// ratchet public key (32B) then the two counters big-endian.
func HeaderBytes(h domain.RatchetHeader) []byte {
	out := make([]byte, 0, len(h.RatchetPub)+8)
	out = append(out, h.RatchetPub...)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], h.PreviousChainLength)
	out = append(out, b[:]...)
	binary.BigEndian.PutUint32(b[:], h.MessageNumber)
	out = append(out, b[:]...)
	return out
}
