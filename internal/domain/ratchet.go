package domain

// RatchetHeader travels in the clear alongside every ciphertext. It is bound
// into the AEAD associated data so tampering is detectable.
type RatchetHeader struct {
	RatchetPub          []byte `json:"ratchet_pub"` // 32 bytes
	PreviousChainLength uint32 `json:"pn"`
	MessageNumber       uint32 `json:"n"`
}

// MessageKey is derived per message and wiped after a single use.
type MessageKey struct {
	Key        []byte
	Number     uint32
	RatchetPub X25519Public
}

// RatchetState contains all fields the Double Ratchet needs to track.
// Skipped keys are stored by hex(ratchetPub||messageNumber) with insertion
// order kept separately so eviction is FIFO by chain position.
type RatchetState struct {
	RootKey    []byte        `json:"root_key"`
	DHPriv     X25519Private `json:"dh_priv"`
	DHPub      X25519Public  `json:"dh_pub"`
	PeerDHPub  X25519Public  `json:"peer_dh_pub"`
	SendCK     []byte        `json:"send_ck,omitempty"`
	RecvCK     []byte        `json:"recv_ck,omitempty"`
	Ns         uint32        `json:"ns"`
	Nr         uint32        `json:"nr"`
	PN         uint32        `json:"pn"`
	Skipped    map[string][]byte `json:"skipped,omitempty"`
	SkipOrder  []string          `json:"skip_order,omitempty"`
}
