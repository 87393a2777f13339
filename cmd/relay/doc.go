// Package main runs the in-memory HTTP relay used by g3zkp during development
// and tests. It stores published pre-key bundles and queues encrypted
// envelopes for recipients until they are acknowledged.
//
// HTTP API
//
//	POST /bundle
//	    Store a peer's PreKeyBundle (identity key, signed pre-key + sig, OPKs).
//
//	GET /bundle/{peer}
//	    Return the latest published PreKeyBundle for {peer}.
//
//	POST /msg/{peer}
//	    Enqueue an opaque payload destined to {peer}. Responds with a Receipt.
//
//	GET /msg/{peer}?limit=N
//	    Return up to N queued payloads for {peer}. Messages stay queued until
//	    acknowledged.
//
//	POST /msg/{peer}/ack { "count": N }
//	    Drop the first N queued payloads for {peer}. If N exceeds the queue
//	    length, the queue is cleared.
//
//	POST /topic/{topic}, GET /topic/{topic}
//	    Append to / read a topic's payload log.
//
// All state is held in memory and lost on process exit. The relay never sees
// plaintext or private keys; it only stores ciphertext and public bundles.
package main
