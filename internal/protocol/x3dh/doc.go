// Package x3dh implements the X3DH key agreement used to bootstrap a Double
// Ratchet session between two parties who need not be online simultaneously.
//
// # Flows
//
// Initiator:
//  1. Verify the signed pre-key signature against the peer's Ed25519 key.
//  2. Generate an ephemeral X25519 key pair.
//  3. Compute DH values (IKa·SPKb, EKa·IKb, EKa·SPKb[, EKa·OPKb]).
//  4. HKDF over the concatenated transcript to produce a 32-byte secret.
//
// Responder:
//  1. Receive the PreKeyMessage (initiator IK, ephemeral EK, SPKID[, OPKID]).
//  2. Look up the SPK private and optionally consume the OPK from the keystore.
//  3. Compute the role-swapped DH set and HKDF the same transcript.
//
// The derived secret is single-use: it seeds a ratchet session and is then
// wiped. A bundle whose SPK signature does not verify is rejected with
// domain.ErrHandshakeSignature and must not be retried.
package x3dh
