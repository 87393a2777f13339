package keystore

import (
	"github.com/pkg/errors"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// Save snapshots the keystore state into the backing store, encrypted under
// the passphrase.
func (s *Store) Save(backing domain.KeyMaterialStore, passphrase string) error {
	s.mu.Lock()
	state := domain.KeyMaterial{
		Identity:     s.identity,
		SignedPreKey: s.spk,
		OneTime:      append([]domain.OneTimePreKeyPair(nil), s.oneTime...),
	}
	s.mu.Unlock()

	return errors.Wrap(backing.SaveKeyMaterial(passphrase, state), "keystore: save")
}

// Load replaces the in-memory state with the persisted one. It reports
// whether persisted material was found.
func (s *Store) Load(backing domain.KeyMaterialStore, passphrase string) (bool, error) {
	state, ok, err := backing.LoadKeyMaterial(passphrase)
	if err != nil {
		return false, errors.Wrap(err, "keystore: load")
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	s.identity = state.Identity
	s.spk = state.SignedPreKey
	s.oneTime = state.OneTime
	s.mu.Unlock()
	return true, nil
}
