// Package ratchet implements the Double Ratchet session engine.
//
// A Session maintains a root key and two KDF chains (send and receive). Each
// message advances a chain so keys are forward secure; a new remote ratchet
// key triggers a DH step that rotates the root and both chains. Keys for
// messages that arrive out of order are cached in a bounded FIFO and deleted
// once consumed.
//
// Receives are staged: StageReceive computes on a copy of the state and the
// caller commits only after the ciphertext authenticates. Either the full
// step commits or none of it does.
//
// The initiator can send immediately after the handshake; the responder's
// chains start on its first inbound DH step, so it cannot send before it has
// received at least one message.
package ratchet
