package domain

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing private key (ed25519.PrivateKey layout).
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// KeyPair is an X25519 key pair. The private half never leaves the keystore
// boundary except into the handshake and ratchet internals.
type KeyPair struct {
	Pub  X25519Public  `json:"pub"`
	Priv X25519Private `json:"priv"`
}

// Identity holds your long-term X25519 and Ed25519 keys plus metadata.
type Identity struct {
	XPub       X25519Public   `json:"xpub"`
	XPriv      X25519Private  `json:"xpriv"`
	EdPub      Ed25519Public  `json:"edpub"`
	EdPriv     Ed25519Private `json:"edpriv"`
	KeyID      string         `json:"key_id"`
	CreatedUTC int64          `json:"created_utc"`
}
