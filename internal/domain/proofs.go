package domain

// Circuit identifiers. The catalog is closed; anything else is invalid.
const (
	CircuitMessageSend     = "msg_send"
	CircuitMessageDelivery = "msg_delivery"
	CircuitForwardSecrecy  = "fwd_secrecy"
)

// ZKProof is an immutable Groth16 proof plus its public signals.
// PublicSignals are decimal field elements in circuit declaration order.
type ZKProof struct {
	CircuitID     string    `json:"circuit_id"`
	ProofBytes    []byte    `json:"proof_bytes"`
	PublicSignals []string  `json:"public_signals"`
	Meta          ProofMeta `json:"meta"`
}

// ProofMeta carries bookkeeping attached to a generated proof.
type ProofMeta struct {
	ProofID          string `json:"proof_id"`
	GenerationTimeMs int64  `json:"generation_time_ms"`
	Timestamp        int64  `json:"timestamp"`
	ProverID         string `json:"prover_id"`
}

// MessageSendInputs feed the msg_send circuit. PlaintextDigest and
// EncryptionKey are private witnesses; the rest become public signals.
type MessageSendInputs struct {
	PlaintextDigest []byte `json:"plaintext_digest"`
	EncryptionKey   []byte `json:"encryption_key"`
	CiphertextHash  []byte `json:"ciphertext_hash"`
	SenderKey       []byte `json:"sender_key"`
	RecipientKey    []byte `json:"recipient_key"`
	Timestamp       int64  `json:"timestamp"`
	MinTimestamp    int64  `json:"min_timestamp"`
	MaxTimestamp    int64  `json:"max_timestamp"`
}

// MessageDeliveryInputs feed the msg_delivery circuit.
type MessageDeliveryInputs struct {
	SendTimestamp     int64  `json:"send_timestamp"`
	DeliveryTimestamp int64  `json:"delivery_timestamp"`
	DeliverySignature []byte `json:"delivery_signature"`
	RouteWitness      []byte `json:"route_witness"`
}

// ForwardSecrecyInputs feed the fwd_secrecy circuit. OldChainKey is the
// now-erased chain key; the proof attests the rotation without revealing it.
type ForwardSecrecyInputs struct {
	OldChainKey []byte `json:"old_chain_key"`
}
