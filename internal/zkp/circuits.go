package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	frmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// Domain separators for the forward-secrecy chain model. They mirror the
// chain-key/message-key split of the ratchet KDF inside the circuit.
const (
	fsChainStep   = 1
	fsMessageStep = 2
)

// MessageSendCircuit attests that a message was correctly encrypted: the
// private plaintext digest and encryption key bind to the public ciphertext
// hash through a MiMC commitment, the timestamp lies in the declared range,
// and the proof-value score is derived from the commitment.
//
// Public fields are declared first; their order fixes the public-signal
// layout on the wire.
type MessageSendCircuit struct {
	CiphertextHash       frontend.Variable `gnark:",public"`
	SenderKeyHash        frontend.Variable `gnark:",public"`
	RecipientKeyHash     frontend.Variable `gnark:",public"`
	Timestamp            frontend.Variable `gnark:",public"`
	MinTimestamp         frontend.Variable `gnark:",public"`
	MaxTimestamp         frontend.Variable `gnark:",public"`
	EncryptionCommitment frontend.Variable `gnark:",public"`
	ProofValue           frontend.Variable `gnark:",public"`

	PlaintextDigest frontend.Variable
	EncryptionKey   frontend.Variable
}

func (c *MessageSendCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	h.Write(c.PlaintextDigest, c.EncryptionKey, c.CiphertextHash)
	api.AssertIsEqual(h.Sum(), c.EncryptionCommitment)

	api.AssertIsLessOrEqual(c.MinTimestamp, c.Timestamp)
	api.AssertIsLessOrEqual(c.Timestamp, c.MaxTimestamp)

	h.Reset()
	h.Write(c.EncryptionCommitment, c.Timestamp)
	api.AssertIsEqual(h.Sum(), c.ProofValue)

	// The key hashes participate so the proof cannot be replayed across a
	// different sender/recipient pair.
	h.Reset()
	h.Write(c.SenderKeyHash, c.RecipientKeyHash, c.EncryptionKey)
	api.AssertIsDifferent(h.Sum(), 0)
	return nil
}

// MessageDeliveryCircuit attests that delivery happened no earlier than the
// send, and binds the recipient delivery signature and route witness through
// MiMC commitments.
type MessageDeliveryCircuit struct {
	SendTimestamp       frontend.Variable `gnark:",public"`
	DeliveryTimestamp   frontend.Variable `gnark:",public"`
	SignatureCommitment frontend.Variable `gnark:",public"`
	RouteCommitment     frontend.Variable `gnark:",public"`

	DeliverySignature frontend.Variable
	RouteWitness      frontend.Variable
}

func (c *MessageDeliveryCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(c.SendTimestamp, c.DeliveryTimestamp)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.DeliverySignature, c.DeliveryTimestamp)
	api.AssertIsEqual(h.Sum(), c.SignatureCommitment)

	h.Reset()
	h.Write(c.RouteWitness, c.DeliverySignature)
	api.AssertIsEqual(h.Sum(), c.RouteCommitment)
	return nil
}

// ForwardSecrecyCircuit attests a key rotation: the new chain key is the
// chain-KDF (modeled as MiMC) of the old one, the message key commitment
// derives from the old, now-erased key, and the old and new keys differ.
type ForwardSecrecyCircuit struct {
	NewChainKeyCommitment frontend.Variable `gnark:",public"`
	MessageKeyCommitment  frontend.Variable `gnark:",public"`

	OldChainKey frontend.Variable
}

func (c *ForwardSecrecyCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	h.Write(c.OldChainKey, fsChainStep)
	newChainKey := h.Sum()
	api.AssertIsDifferent(c.OldChainKey, newChainKey)

	h.Reset()
	h.Write(newChainKey)
	api.AssertIsEqual(h.Sum(), c.NewChainKeyCommitment)

	h.Reset()
	h.Write(c.OldChainKey, fsMessageStep)
	messageKey := h.Sum()

	h.Reset()
	h.Write(messageKey)
	api.AssertIsEqual(h.Sum(), c.MessageKeyCommitment)
	return nil
}

// --- native-side helpers (must match the in-circuit MiMC exactly) ---

// fieldElem reduces arbitrary bytes into a BN254 scalar field element.
func fieldElem(b []byte) *big.Int {
	return new(big.Int).Mod(new(big.Int).SetBytes(b), fr.Modulus())
}

// mimcNative hashes field elements with the same MiMC the circuits use.
func mimcNative(inputs ...*big.Int) *big.Int {
	h := frmimc.NewMiMC()
	for _, in := range inputs {
		var e fr.Element
		e.SetBigInt(in)
		b := e.Bytes()
		_, _ = h.Write(b[:])
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}
