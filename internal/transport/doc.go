// Package transport implements the relay-backed Transport: an HTTP client
// for the relay server's bundle directory, peer message queues and topics.
package transport
