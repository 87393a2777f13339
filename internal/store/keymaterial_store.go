package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

const keyMaterialFile = "keystore.json.enc"

// KeyMaterialFileStore persists the keystore state encrypted at rest.
type KeyMaterialFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewKeyMaterialFileStore returns a KeyMaterialFileStore rooted at dir.
func NewKeyMaterialFileStore(dir string) *KeyMaterialFileStore {
	return &KeyMaterialFileStore{dir: dir}
}

// SaveKeyMaterial writes the encrypted keystore snapshot to disk.
func (s *KeyMaterialFileStore) SaveKeyMaterial(passphrase string, state domain.KeyMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ct, err := encryptBlob(passphrase, raw)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, keyMaterialFile), ct, 0o600)
}

// LoadKeyMaterial reads and decrypts the keystore snapshot. A missing file
// reports ok=false, not an error.
func (s *KeyMaterialFileStore) LoadKeyMaterial(passphrase string) (domain.KeyMaterial, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, keyMaterialFile))
	if errors.Is(err, os.ErrNotExist) {
		return domain.KeyMaterial{}, false, nil
	}
	if err != nil {
		return domain.KeyMaterial{}, false, err
	}
	raw, err := decryptBlob(passphrase, b)
	if err != nil {
		return domain.KeyMaterial{}, false, err
	}
	var state domain.KeyMaterial
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.KeyMaterial{}, false, err
	}
	return state, true, nil
}

// Compile-time assertion that KeyMaterialFileStore implements domain.KeyMaterialStore.
var _ domain.KeyMaterialStore = (*KeyMaterialFileStore)(nil)
