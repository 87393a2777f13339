package x3dh

import (
	"github.com/pkg/errors"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/crypto"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/util/memzero"
)

// kdfLabel domain-separates the X3DH transcript from every other HKDF use.
const kdfLabel = "g3zkp/x3dh/v1"

// SecretSize is the size of the derived shared secret in bytes.
const SecretSize = 32

// InitiatorResult is what the initiator needs to build its first message:
// the shared secret plus the identifiers of the pre-keys it consumed.
type InitiatorResult struct {
	Secret          []byte
	SignedPreKeyID  string
	OneTimePreKeyID string
	EphemeralPub    domain.X25519Public
}

// InitiatorSecret derives the shared secret against a published bundle.
//
// The signed pre-key signature is verified first; on failure the bundle is
// rejected outright (domain.ErrHandshakeSignature) and must not be retried.
// When the bundle carries one-time pre-keys the first is used for DH4;
// otherwise the handshake runs with three DH computations.
func InitiatorSecret(our domain.Identity, bundle domain.PreKeyBundle) (InitiatorResult, error) {
	if !crypto.VerifyEd25519(bundle.SigningKey, bundle.SignedPreKey.Slice(), bundle.SignedPreKeySignature) {
		return InitiatorResult{}, domain.ErrHandshakeSignature
	}

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return InitiatorResult{}, errors.Wrap(err, "x3dh: ephemeral key")
	}

	var dh4Pub *domain.X25519Public
	var opkID string
	if len(bundle.OneTimePreKeys) > 0 {
		dh4Pub = &bundle.OneTimePreKeys[0].Pub
		opkID = bundle.OneTimePreKeys[0].ID
	}

	secret, err := derive(
		our.XPriv, bundle.SignedPreKey, // DH1 = DH(IKa, SPKb)
		ephPriv, bundle.IdentityKey, // DH2 = DH(EKa, IKb)
		ephPriv, bundle.SignedPreKey, // DH3 = DH(EKa, SPKb)
		&ephPriv, dh4Pub, // DH4 = DH(EKa, OPKb), optional
	)
	if err != nil {
		return InitiatorResult{}, err
	}

	memzero.Zero(ephPriv[:])
	return InitiatorResult{
		Secret:          secret,
		SignedPreKeyID:  bundle.SignedPreKeyID,
		OneTimePreKeyID: opkID,
		EphemeralPub:    ephPub,
	}, nil
}

// ResponderSecret mirrors the four DH computations from the responder side.
// The DH1/DH2 roles swap so both transcripts feed the KDF identically.
// opkPriv is nil when the initiator ran without a one-time pre-key.
func ResponderSecret(
	our domain.Identity,
	spkPriv domain.X25519Private,
	opkPriv *domain.X25519Private,
	msg domain.PreKeyMessage,
) ([]byte, error) {
	return derive(
		spkPriv, msg.InitiatorIdentityKey, // DH1 = DH(SPKb, IKa)
		our.XPriv, msg.EphemeralKey, // DH2 = DH(IKb, EKa)
		spkPriv, msg.EphemeralKey, // DH3 = DH(SPKb, EKa)
		opkPriv, &msg.EphemeralKey, // DH4 = DH(OPKb, EKa), optional
	)
}

// derive runs the DH agreements, concatenates them in transcript order and
// applies the labelled KDF. DH4 is skipped when either side is nil.
func derive(
	dh1Priv domain.X25519Private, dh1Pub domain.X25519Public,
	dh2Priv domain.X25519Private, dh2Pub domain.X25519Public,
	dh3Priv domain.X25519Private, dh3Pub domain.X25519Public,
	dh4Priv *domain.X25519Private, dh4Pub *domain.X25519Public,
) ([]byte, error) {
	dh1, err := crypto.DH(dh1Priv, dh1Pub)
	if err != nil {
		return nil, errors.Wrap(err, "x3dh: DH1")
	}
	dh2, err := crypto.DH(dh2Priv, dh2Pub)
	if err != nil {
		return nil, errors.Wrap(err, "x3dh: DH2")
	}
	dh3, err := crypto.DH(dh3Priv, dh3Pub)
	if err != nil {
		return nil, errors.Wrap(err, "x3dh: DH3")
	}

	transcript := make([]byte, 0, 32*4)
	transcript = append(transcript, dh1[:]...)
	transcript = append(transcript, dh2[:]...)
	transcript = append(transcript, dh3[:]...)
	memzero.Zero(dh1[:])
	memzero.Zero(dh2[:])
	memzero.Zero(dh3[:])

	if dh4Priv != nil && dh4Pub != nil {
		dh4, err := crypto.DH(*dh4Priv, *dh4Pub)
		if err != nil {
			return nil, errors.Wrap(err, "x3dh: DH4")
		}
		transcript = append(transcript, dh4[:]...)
		memzero.Zero(dh4[:])
	}

	secret := crypto.HKDF(transcript, nil, kdfLabel, SecretSize)
	memzero.Zero(transcript)
	return secret, nil
}
