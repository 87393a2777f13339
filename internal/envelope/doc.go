// Package envelope provides the authenticated-encryption layer over
// ChaCha20-Poly1305. Nonces are random, generated internally per call, and
// the ratchet header is bound in as associated data so the clear-text header
// cannot be tampered with undetected.
package envelope
