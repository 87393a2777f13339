// Package zkp is the proof engine: a closed catalog of three Groth16
// circuits (message send, message delivery, forward-secrecy rotation) over
// BN254 with MiMC commitments, a bounded proof cache with a freshness
// window, and a CPU-sized worker bound on proving.
//
// Artifacts live on disk per circuit id and are loaded once at startup; a
// missing artifact degrades that circuit only. Verification of an unknown
// circuit id always fails closed. The soundness gate rejects any compiled
// system carrying fewer constraints than declared private signals, both at
// setup time and at registry load.
package zkp
