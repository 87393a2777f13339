// Package app loads configuration and wires the dependency graph for the
// g3zkp CLI: keystore, file stores, relay client, circuit registry and proof
// engine, exposed to commands through the Wire struct.
package app
