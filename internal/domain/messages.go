package domain

// Envelope is the wire-format message posted to and fetched from the relay.
type Envelope struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	Header    RatchetHeader  `json:"header"`
	Nonce     []byte         `json:"nonce"`
	Cipher    []byte         `json:"cipher"` // ciphertext including the AEAD tag
	Proof     *ZKProof       `json:"proof,omitempty"`
	PreKey    *PreKeyMessage `json:"pre_key,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// DecryptedMessage is what the inbound pipeline returns.
type DecryptedMessage struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Plaintext []byte `json:"plaintext"`
	Timestamp int64  `json:"timestamp"`
}

// Receipt is returned by the transport for a delivered payload.
type Receipt struct {
	Timestamp      int64  `json:"timestamp"`
	DeliveryMethod string `json:"delivery_method"`
}
