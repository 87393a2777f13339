// Package store provides the file-backed persistence layer: atomic JSON
// writes (temp file plus rename), a passphrase-encrypted envelope for key
// material at rest (Argon2id + ChaCha20-Poly1305), and the session/proof
// stores behind domain.Persistence.
package store
