// Package commands implements the g3zkp CLI: identity provisioning, bundle
// publication, X3DH handshakes, proof-carrying message exchange and circuit
// setup.
package commands
