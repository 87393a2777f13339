package zkp

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// Config tunes the engine. Zero values select the defaults.
type Config struct {
	CacheCapacity int
	CacheEvict    int
	Freshness     time.Duration
	Workers       int // bounds parallel proving; proving is CPU-bound
}

// Engine generates and verifies Groth16 proofs over the closed circuit
// catalog. The registry is read-only and shared; the cache synchronises only
// its map operations, so proofs for independent inputs run fully in parallel
// up to the worker bound.
type Engine struct {
	registry *Registry
	cache    *proofCache
	sem      chan struct{}
	node     *snowflake.Node
	proverID string

	proves atomic.Uint64
}

// New builds an engine over a loaded registry. proverID tags proof metadata.
func New(registry *Registry, proverID string, cfg Config) (*Engine, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, errors.Wrap(err, "zkp: snowflake node")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		registry: registry,
		cache:    newProofCache(cfg.CacheCapacity, cfg.CacheEvict, cfg.Freshness),
		sem:      make(chan struct{}, workers),
		node:     node,
		proverID: proverID,
	}, nil
}

// ProveCount reports how many times the proving routine actually ran,
// excluding cache hits.
func (e *Engine) ProveCount() uint64 { return e.proves.Load() }

// GenerateMessageSendProof proves correct encryption of an outbound message
// bound to its ciphertext hash, key hashes and timestamp window.
func (e *Engine) GenerateMessageSendProof(ctx context.Context, in domain.MessageSendInputs) (domain.ZKProof, error) {
	pt := fieldElem(in.PlaintextDigest)
	key := fieldElem(in.EncryptionKey)
	ct := fieldElem(in.CiphertextHash)
	sender := mimcNative(fieldElem(in.SenderKey))
	recipient := mimcNative(fieldElem(in.RecipientKey))
	ts := big.NewInt(in.Timestamp)
	minTs := big.NewInt(in.MinTimestamp)
	maxTs := big.NewInt(in.MaxTimestamp)

	commitment := mimcNative(pt, key, ct)
	proofValue := mimcNative(commitment, ts)

	assignment := &MessageSendCircuit{
		CiphertextHash:       ct,
		SenderKeyHash:        sender,
		RecipientKeyHash:     recipient,
		Timestamp:            ts,
		MinTimestamp:         minTs,
		MaxTimestamp:         maxTs,
		EncryptionCommitment: commitment,
		ProofValue:           proofValue,
		PlaintextDigest:      pt,
		EncryptionKey:        key,
	}
	signals := decimals(ct, sender, recipient, ts, minTs, maxTs, commitment, proofValue)
	return e.prove(ctx, KindMessageSend, in, assignment, signals)
}

// GenerateMessageDeliveryProof proves delivery-after-send with the delivery
// signature and route witness bound by commitment.
func (e *Engine) GenerateMessageDeliveryProof(ctx context.Context, in domain.MessageDeliveryInputs) (domain.ZKProof, error) {
	sig := fieldElem(in.DeliverySignature)
	route := fieldElem(in.RouteWitness)
	sendTs := big.NewInt(in.SendTimestamp)
	deliveryTs := big.NewInt(in.DeliveryTimestamp)

	sigCommit := mimcNative(sig, deliveryTs)
	routeCommit := mimcNative(route, sig)

	assignment := &MessageDeliveryCircuit{
		SendTimestamp:       sendTs,
		DeliveryTimestamp:   deliveryTs,
		SignatureCommitment: sigCommit,
		RouteCommitment:     routeCommit,
		DeliverySignature:   sig,
		RouteWitness:        route,
	}
	signals := decimals(sendTs, deliveryTs, sigCommit, routeCommit)
	return e.prove(ctx, KindMessageDelivery, in, assignment, signals)
}

// GenerateForwardSecrecyProof attests a chain-key rotation without revealing
// the erased key.
func (e *Engine) GenerateForwardSecrecyProof(ctx context.Context, in domain.ForwardSecrecyInputs) (domain.ZKProof, error) {
	old := fieldElem(in.OldChainKey)
	newChainKey := mimcNative(old, big.NewInt(fsChainStep))
	messageKey := mimcNative(old, big.NewInt(fsMessageStep))

	newCommit := mimcNative(newChainKey)
	mkCommit := mimcNative(messageKey)

	assignment := &ForwardSecrecyCircuit{
		NewChainKeyCommitment: newCommit,
		MessageKeyCommitment:  mkCommit,
		OldChainKey:           old,
	}
	signals := decimals(newCommit, mkCommit)
	return e.prove(ctx, KindForwardSecrecy, in, assignment, signals)
}

// VerifyProof checks a proof against its circuit's verification key. Unknown
// circuit ids fail closed; a pairing mismatch is (false, nil).
func (e *Engine) VerifyProof(p domain.ZKProof) (bool, error) {
	kind := KindFromID(p.CircuitID)
	if kind == KindUnknown {
		return false, domain.ErrUnknownCircuit
	}
	d, err := e.registry.descriptor(kind)
	if err != nil {
		return false, err
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(p.ProofBytes)); err != nil {
		return false, errors.Wrap(err, "zkp: decode proof")
	}
	assignment, err := publicAssignment(kind, p.PublicSignals)
	if err != nil {
		return false, err
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, errors.Wrap(err, "zkp: public witness")
	}
	if err := groth16.Verify(proof, d.VK, w); err != nil {
		return false, nil
	}
	return true, nil
}

// prove runs the cache-then-prove path shared by the three generators.
func (e *Engine) prove(ctx context.Context, kind Kind, inputs any, assignment frontend.Circuit, signals []string) (domain.ZKProof, error) {
	canonical, err := json.Marshal(inputs)
	if err != nil {
		return domain.ZKProof{}, errors.Wrap(err, "zkp: canonicalize inputs")
	}
	key := cacheKey(kind.CircuitID(), canonical)

	if p, ok := e.cache.get(key); ok {
		log.WithField("circuit", kind.CircuitID()).Debug("proof cache hit")
		return p, nil
	}

	d, err := e.registry.descriptor(kind)
	if err != nil {
		return domain.ZKProof{}, err
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return domain.ZKProof{}, ctx.Err()
	}

	start := time.Now()
	e.proves.Add(1)

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return domain.ZKProof{}, errors.Wrap(err, "zkp: witness")
	}
	proof, err := groth16.Prove(d.CS, d.PK, w)
	if err != nil {
		return domain.ZKProof{}, errors.Wrapf(err, "zkp: prove %s", kind.CircuitID())
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return domain.ZKProof{}, errors.Wrap(err, "zkp: encode proof")
	}

	elapsed := time.Since(start)
	zk := domain.ZKProof{
		CircuitID:     kind.CircuitID(),
		ProofBytes:    buf.Bytes(),
		PublicSignals: signals,
		Meta: domain.ProofMeta{
			ProofID:          e.node.Generate().String(),
			GenerationTimeMs: elapsed.Milliseconds(),
			Timestamp:        time.Now().Unix(),
			ProverID:         e.proverID,
		},
	}
	e.cache.put(key, zk)
	log.WithFields(log.Fields{
		"circuit": kind.CircuitID(),
		"took":    elapsed,
	}).Debug("proof generated")
	return zk, nil
}

// publicAssignment rebuilds the circuit's public inputs from wire signals in
// declaration order.
func publicAssignment(kind Kind, signals []string) (frontend.Circuit, error) {
	vals, err := parseSignals(signals)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindMessageSend:
		if len(vals) != 8 {
			return nil, errors.Errorf("zkp: msg_send wants 8 public signals, got %d", len(vals))
		}
		return &MessageSendCircuit{
			CiphertextHash:       vals[0],
			SenderKeyHash:        vals[1],
			RecipientKeyHash:     vals[2],
			Timestamp:            vals[3],
			MinTimestamp:         vals[4],
			MaxTimestamp:         vals[5],
			EncryptionCommitment: vals[6],
			ProofValue:           vals[7],
		}, nil
	case KindMessageDelivery:
		if len(vals) != 4 {
			return nil, errors.Errorf("zkp: msg_delivery wants 4 public signals, got %d", len(vals))
		}
		return &MessageDeliveryCircuit{
			SendTimestamp:       vals[0],
			DeliveryTimestamp:   vals[1],
			SignatureCommitment: vals[2],
			RouteCommitment:     vals[3],
		}, nil
	case KindForwardSecrecy:
		if len(vals) != 2 {
			return nil, errors.Errorf("zkp: fwd_secrecy wants 2 public signals, got %d", len(vals))
		}
		return &ForwardSecrecyCircuit{
			NewChainKeyCommitment: vals[0],
			MessageKeyCommitment:  vals[1],
		}, nil
	default:
		return nil, domain.ErrUnknownCircuit
	}
}

func parseSignals(signals []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(signals))
	for i, s := range signals {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, errors.Errorf("zkp: public signal %d is not a decimal field element", i)
		}
		out[i] = v
	}
	return out, nil
}

func decimals(vals ...*big.Int) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

func cacheKey(circuitID string, canonical []byte) string {
	h := sha256.New()
	h.Write([]byte(circuitID))
	h.Write([]byte{0})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}
