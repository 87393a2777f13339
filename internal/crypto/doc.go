// Package crypto exposes the minimal primitives used by g3zkp.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - HKDF-SHA256 with domain-separation labels (HKDF, HKDFPair)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// All functions take and return fixed-size array types defined in
// internal/domain to avoid accidental reallocations. Callers should treat
// returned secrets as sensitive and rely on memzero.Zero when practical to
// reduce lifetime in memory.
package crypto
