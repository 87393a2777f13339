// Package keystore owns identity, signed pre-key and one-time pre-key
// material for a node.
//
// The store is an explicit instance handed to the handshake and session
// constructors; there is no ambient singleton. The one-time pool is FIFO and
// every key is served at most once, which a single mutex guarantees across
// concurrent inbound handshakes. An exhausted pool degrades the handshake to
// three DH computations instead of failing.
package keystore
