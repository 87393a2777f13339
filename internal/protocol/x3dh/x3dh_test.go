package x3dh_test

import (
	"bytes"
	"testing"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/crypto"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/protocol/x3dh"
)

// makeIdentity creates a domain.Identity with fresh X25519 and Ed25519 pairs.
func makeIdentity(t *testing.T) domain.Identity {
	t.Helper()
	xPriv, xPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	edPriv, edPub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	return domain.Identity{XPub: xPub, XPriv: xPriv, EdPub: edPub, EdPriv: edPriv}
}

// makeBundle publishes a bundle for id with a fresh signed pre-key and the
// given one-time pre-keys. The SPK private half is returned for the responder.
func makeBundle(t *testing.T, id domain.Identity, oneTime []domain.OneTimePreKeyPublic) (domain.PreKeyBundle, domain.X25519Private) {
	t.Helper()
	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	return domain.PreKeyBundle{
		PeerID:                "bob",
		IdentityKey:           id.XPub,
		SigningKey:            id.EdPub,
		SignedPreKeyID:        "spk-test",
		SignedPreKey:          spkPub,
		SignedPreKeySignature: crypto.SignEd25519(id.EdPriv, spkPub[:]),
		OneTimePreKeys:        oneTime,
	}, spkPriv
}

func TestSecretAgreement_NoOneTimePreKey(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)
	bundle, spkPriv := makeBundle(t, bob, nil)

	res, err := x3dh.InitiatorSecret(alice, bundle)
	if err != nil {
		t.Fatalf("InitiatorSecret: %v", err)
	}
	if res.SignedPreKeyID != "spk-test" {
		t.Fatalf("want signed pre-key id spk-test, got %q", res.SignedPreKeyID)
	}
	if res.OneTimePreKeyID != "" {
		t.Fatalf("want empty one-time pre-key id, got %q", res.OneTimePreKeyID)
	}

	pm := domain.PreKeyMessage{
		InitiatorIdentityKey: alice.XPub,
		EphemeralKey:         res.EphemeralPub,
		SignedPreKeyID:       res.SignedPreKeyID,
	}
	secret, err := x3dh.ResponderSecret(bob, spkPriv, nil, pm)
	if err != nil {
		t.Fatalf("ResponderSecret: %v", err)
	}
	if !bytes.Equal(res.Secret, secret) {
		t.Fatal("shared secrets differ (no OPK)")
	}
	if len(secret) != x3dh.SecretSize {
		t.Fatalf("secret is %d bytes, want %d", len(secret), x3dh.SecretSize)
	}
}

func TestSecretAgreement_WithOneTimePreKey(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	opkPriv, opkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (opk): %v", err)
	}
	bundle, spkPriv := makeBundle(t, bob, []domain.OneTimePreKeyPublic{
		{ID: "opk-1", Pub: opkPub},
	})

	res, err := x3dh.InitiatorSecret(alice, bundle)
	if err != nil {
		t.Fatalf("InitiatorSecret: %v", err)
	}
	if res.OneTimePreKeyID != "opk-1" {
		t.Fatalf("want one-time pre-key id opk-1, got %q", res.OneTimePreKeyID)
	}

	pm := domain.PreKeyMessage{
		InitiatorIdentityKey: alice.XPub,
		EphemeralKey:         res.EphemeralPub,
		SignedPreKeyID:       res.SignedPreKeyID,
		OneTimePreKeyID:      res.OneTimePreKeyID,
	}
	secret, err := x3dh.ResponderSecret(bob, spkPriv, &opkPriv, pm)
	if err != nil {
		t.Fatalf("ResponderSecret: %v", err)
	}
	if !bytes.Equal(res.Secret, secret) {
		t.Fatal("shared secrets differ (with OPK)")
	}
}

func TestSecretsDivergeWithAndWithoutOPK(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)

	_, opkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519 (opk): %v", err)
	}
	with, _ := makeBundle(t, bob, []domain.OneTimePreKeyPublic{{ID: "opk-1", Pub: opkPub}})
	without := with
	without.OneTimePreKeys = nil

	resWith, err := x3dh.InitiatorSecret(alice, with)
	if err != nil {
		t.Fatalf("InitiatorSecret (with): %v", err)
	}
	resWithout, err := x3dh.InitiatorSecret(alice, without)
	if err != nil {
		t.Fatalf("InitiatorSecret (without): %v", err)
	}
	if bytes.Equal(resWith.Secret, resWithout.Secret) {
		t.Fatal("3-DH and 4-DH transcripts produced the same secret")
	}
}

func TestBadSignedPreKeySignatureAborts(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)
	bundle, _ := makeBundle(t, bob, nil)
	bundle.SignedPreKeySignature[0] ^= 0xff

	if _, err := x3dh.InitiatorSecret(alice, bundle); err != domain.ErrHandshakeSignature {
		t.Fatalf("want ErrHandshakeSignature, got %v", err)
	}
}

func TestSignatureFromWrongIdentityAborts(t *testing.T) {
	alice := makeIdentity(t)
	bob := makeIdentity(t)
	mallory := makeIdentity(t)

	bundle, _ := makeBundle(t, bob, nil)
	// Re-sign the pre-key under a different identity.
	bundle.SignedPreKeySignature = crypto.SignEd25519(mallory.EdPriv, bundle.SignedPreKey.Slice())

	if _, err := x3dh.InitiatorSecret(alice, bundle); err != domain.ErrHandshakeSignature {
		t.Fatalf("want ErrHandshakeSignature, got %v", err)
	}
}
