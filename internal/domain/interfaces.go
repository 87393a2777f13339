package domain

import "context"

// Transport delivers opaque payloads to peers or topics. Operations are
// fallible, retryable and idempotent on resend.
type Transport interface {
	SendDirect(ctx context.Context, peerID string, payload []byte) (Receipt, error)
	Publish(ctx context.Context, topic string, payload []byte) (Receipt, error)
}

// Persistence stores ratchet sessions and proofs. Session saves must be
// atomic per save; a partially written state is worse than a missing one.
type Persistence interface {
	SaveSession(sessionID string, state RatchetState) error
	LoadSession(sessionID string) (RatchetState, bool, error)
	SaveProof(proof ZKProof) error
	GetProof(proofID string) (ZKProof, bool, error)
}

// ProofEngine generates and verifies succinct proofs over message and
// session commitments. Verification of an unknown circuit id fails closed.
type ProofEngine interface {
	GenerateMessageSendProof(ctx context.Context, in MessageSendInputs) (ZKProof, error)
	GenerateMessageDeliveryProof(ctx context.Context, in MessageDeliveryInputs) (ZKProof, error)
	GenerateForwardSecrecyProof(ctx context.Context, in ForwardSecrecyInputs) (ZKProof, error)
	VerifyProof(proof ZKProof) (bool, error)
}

// KeyMaterialStore persists the keystore state encrypted at rest.
type KeyMaterialStore interface {
	SaveKeyMaterial(passphrase string, state KeyMaterial) error
	LoadKeyMaterial(passphrase string) (KeyMaterial, bool, error)
}

// KeyMaterial is the serialized keystore state.
type KeyMaterial struct {
	Identity     *Identity           `json:"identity,omitempty"`
	SignedPreKey *SignedPreKey       `json:"signed_pre_key,omitempty"`
	OneTime      []OneTimePreKeyPair `json:"one_time,omitempty"`
}

// RelayClient is how we talk to the relay server beyond the raw Transport
// contract: bundle directory and message queue operations.
type RelayClient interface {
	Transport

	RegisterPreKeyBundle(ctx context.Context, bundle PreKeyBundle) error
	FetchPreKeyBundle(ctx context.Context, peerID string) (PreKeyBundle, error)

	FetchMessages(ctx context.Context, peerID string, limit int) ([]Envelope, error)
	AckMessages(ctx context.Context, peerID string, count int) error
}
