package store_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/store"
)

func TestKeyMaterialSaveLoad(t *testing.T) {
	s := store.NewKeyMaterialFileStore(t.TempDir())

	id := &domain.Identity{
		XPub:   domain.X25519Public{1},
		XPriv:  domain.X25519Private{2},
		EdPub:  domain.Ed25519Public{3},
		EdPriv: domain.Ed25519Private{4},
		KeyID:  "k1",
	}
	state := domain.KeyMaterial{
		Identity: id,
		OneTime: []domain.OneTimePreKeyPair{
			{ID: "opk-1", Priv: domain.X25519Private{5}, Pub: domain.X25519Public{6}},
		},
	}

	if err := s.SaveKeyMaterial("pass", state); err != nil {
		t.Fatalf("SaveKeyMaterial: %v", err)
	}

	got, ok, err := s.LoadKeyMaterial("pass")
	if err != nil {
		t.Fatalf("LoadKeyMaterial: %v", err)
	}
	if !ok {
		t.Fatal("key material not found")
	}
	if got.Identity == nil || got.Identity.XPub != id.XPub {
		t.Fatal("identity mismatch after load")
	}
	if len(got.OneTime) != 1 || got.OneTime[0].ID != "opk-1" {
		t.Fatal("one-time pre-keys mismatch after load")
	}
}

func TestWrongPassphraseFails(t *testing.T) {
	s := store.NewKeyMaterialFileStore(t.TempDir())

	if err := s.SaveKeyMaterial("correct", domain.KeyMaterial{}); err != nil {
		t.Fatalf("SaveKeyMaterial: %v", err)
	}
	_, _, err := s.LoadKeyMaterial("wrong")
	if !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
}

func TestMissingKeyMaterialIsNotAnError(t *testing.T) {
	s := store.NewKeyMaterialFileStore(t.TempDir())

	_, ok, err := s.LoadKeyMaterial("pass")
	if err != nil {
		t.Fatalf("LoadKeyMaterial: %v", err)
	}
	if ok {
		t.Fatal("found key material in an empty store")
	}
}
