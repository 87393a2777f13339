package domain

import "errors"

// Protocol errors are fatal to the specific handshake or message.
var (
	// ErrHandshakeSignature means the signed pre-key signature failed
	// verification; the bundle is rejected and never retried as-is.
	ErrHandshakeSignature = errors.New("signed pre-key signature invalid")

	// ErrMalformedHeader means a ratchet header could not be parsed or its
	// ratchet key is not a valid 32-byte point encoding.
	ErrMalformedHeader = errors.New("malformed ratchet header")
)

// Crypto errors are per-message; session state stays untouched.
var (
	// ErrAuthentication is returned when an AEAD tag check fails.
	ErrAuthentication = errors.New("message authentication failed")

	// ErrMessageRejected is the user-visible failure for a message whose
	// proof or decryption could not be verified.
	ErrMessageRejected = errors.New("message could not be verified")
)

var (
	// ErrSoundness means a compiled circuit carries fewer constraints than
	// declared private signals. This must block deployment.
	ErrSoundness = errors.New("circuit is under-constrained")

	// ErrUnknownCircuit is returned for any circuit id outside the catalog.
	// Unknown circuits always fail closed.
	ErrUnknownCircuit = errors.New("unknown circuit id")

	// ErrCircuitUnavailable means the circuit is in the catalog but its
	// artifacts were not loaded (degraded mode).
	ErrCircuitUnavailable = errors.New("circuit artifacts not loaded")
)

// ErrNoSession indicates there is no established session with the peer.
var ErrNoSession = errors.New("no session with peer; run handshake first")
