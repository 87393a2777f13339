package zkp

import "crypto/sha256"

// CiphertextSignal returns the decimal field element a msg_send proof
// carries as its first public signal for the given ciphertext. The inbound
// pipeline uses it to check a proof is bound to the ciphertext it arrived
// with, not merely valid for some message.
func CiphertextSignal(ciphertext []byte) string {
	sum := sha256.Sum256(ciphertext)
	return DigestSignal(sum[:])
}

// DigestSignal maps a hash digest to its decimal field-element form.
func DigestSignal(digest []byte) string {
	return fieldElem(digest).String()
}
