// Package pipeline orchestrates the outbound and inbound message paths:
// ratchet advance, AEAD sealing, proof generation and verification, ordered
// so that no ratchet state is committed for a message that fails to verify.
package pipeline
