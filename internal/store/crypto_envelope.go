package store

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/util/memzero"
)

// The current supported version of the encrypted blob format stored on disk.
const blobFormatVersion = 1

// Argon2id parameters for the at-rest key-encryption key.
const (
	argonMemory  = 1 << 16
	argonTime    = 8
	argonThreads = 1
)

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// ciphertext has been modified or corrupted.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key material")

// blob is the on-disk JSON structure holding the ciphertext and KDF parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// encryptBlob derives a key from passphrase with Argon2id and seals raw into
// a versioned JSON blob.
func encryptBlob(passphrase string, raw []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	kek := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	defer memzero.Zero(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, raw, salt)

	return json.Marshal(blob{V: blobFormatVersion, Salt: salt, Nonce: nonce, Cipher: ct})
}

// decryptBlob opens a versioned JSON blob with a key derived from passphrase.
func decryptBlob(passphrase string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > blobFormatVersion {
		return nil, fmt.Errorf("unsupported key material version %d", bl.V)
	}

	kek := argon2.IDKey([]byte(passphrase), bl.Salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	defer memzero.Zero(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, bl.Nonce, bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
