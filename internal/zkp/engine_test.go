package zkp

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/stretchr/testify/require"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

var (
	registryOnce sync.Once
	registryErr  error
	testRegistry *Registry
)

// fullRegistry compiles and sets up the whole catalog once per test binary;
// Groth16 setup is too slow to repeat per test.
func fullRegistry(t *testing.T) *Registry {
	t.Helper()
	registryOnce.Do(func() {
		descriptors := make([]*Descriptor, 0, len(AllKinds))
		for _, kind := range AllKinds {
			d, err := Setup(kind)
			if err != nil {
				registryErr = err
				return
			}
			descriptors = append(descriptors, d)
		}
		testRegistry, registryErr = NewRegistry(descriptors...)
	})
	require.NoError(t, registryErr)
	return testRegistry
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(fullRegistry(t), "test-prover", cfg)
	require.NoError(t, err)
	return e
}

func sendInputs() domain.MessageSendInputs {
	now := time.Now().Unix()
	return domain.MessageSendInputs{
		PlaintextDigest: []byte{1, 2, 3},
		EncryptionKey:   []byte{4, 5, 6},
		CiphertextHash:  []byte{7, 8, 9},
		SenderKey:       []byte("alice"),
		RecipientKey:    []byte("bob"),
		Timestamp:       now,
		MinTimestamp:    now - 60,
		MaxTimestamp:    now + 60,
	}
}

func TestMessageSendProofVerifies(t *testing.T) {
	e := newTestEngine(t, Config{})

	proof, err := e.GenerateMessageSendProof(context.Background(), sendInputs())
	require.NoError(t, err)
	require.Equal(t, domain.CircuitMessageSend, proof.CircuitID)
	require.Len(t, proof.PublicSignals, 8)
	require.NotEmpty(t, proof.Meta.ProofID)
	require.Equal(t, "test-prover", proof.Meta.ProverID)

	ok, err := e.VerifyProof(proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMessageDeliveryProofVerifies(t *testing.T) {
	e := newTestEngine(t, Config{})

	proof, err := e.GenerateMessageDeliveryProof(context.Background(), domain.MessageDeliveryInputs{
		SendTimestamp:     100,
		DeliveryTimestamp: 140,
		DeliverySignature: []byte("sig"),
		RouteWitness:      []byte("alice>bob"),
	})
	require.NoError(t, err)
	require.Len(t, proof.PublicSignals, 4)

	ok, err := e.VerifyProof(proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestForwardSecrecyProofVerifies(t *testing.T) {
	e := newTestEngine(t, Config{})

	proof, err := e.GenerateForwardSecrecyProof(context.Background(), domain.ForwardSecrecyInputs{
		OldChainKey: []byte{0xaa, 0xbb},
	})
	require.NoError(t, err)
	require.Len(t, proof.PublicSignals, 2)

	ok, err := e.VerifyProof(proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIdenticalInputsHitTheCache(t *testing.T) {
	e := newTestEngine(t, Config{})
	in := sendInputs()

	first, err := e.GenerateMessageSendProof(context.Background(), in)
	require.NoError(t, err)
	second, err := e.GenerateMessageSendProof(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, uint64(1), e.ProveCount(), "second call must not re-prove")
	require.Equal(t, first.Meta.ProofID, second.Meta.ProofID)
}

func TestStaleCacheEntryReproves(t *testing.T) {
	e := newTestEngine(t, Config{Freshness: time.Nanosecond})
	in := sendInputs()

	_, err := e.GenerateMessageSendProof(context.Background(), in)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = e.GenerateMessageSendProof(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, uint64(2), e.ProveCount(), "stale entry must re-prove")
}

func TestDifferentInputsProveSeparately(t *testing.T) {
	e := newTestEngine(t, Config{})

	a := sendInputs()
	b := sendInputs()
	b.PlaintextDigest = []byte{9, 9, 9}

	_, err := e.GenerateMessageSendProof(context.Background(), a)
	require.NoError(t, err)
	_, err = e.GenerateMessageSendProof(context.Background(), b)
	require.NoError(t, err)
	require.Equal(t, uint64(2), e.ProveCount())
}

func TestVerifyRejectsTamperedSignals(t *testing.T) {
	e := newTestEngine(t, Config{})

	proof, err := e.GenerateMessageSendProof(context.Background(), sendInputs())
	require.NoError(t, err)

	proof.PublicSignals[0] = "12345" // a valid field element, wrong binding
	ok, err := e.VerifyProof(proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyUnknownCircuitFailsClosed(t *testing.T) {
	e := newTestEngine(t, Config{})

	ok, err := e.VerifyProof(domain.ZKProof{CircuitID: "msg_send_v2"})
	require.ErrorIs(t, err, domain.ErrUnknownCircuit)
	require.False(t, ok)
}

func TestDegradedRegistryReportsUnavailable(t *testing.T) {
	full := fullRegistry(t)
	partial, err := NewRegistry(full.desc[KindMessageSend])
	require.NoError(t, err)

	e, err := New(partial, "test-prover", Config{})
	require.NoError(t, err)

	_, err = e.GenerateMessageSendProof(context.Background(), sendInputs())
	require.NoError(t, err)

	_, err = e.GenerateMessageDeliveryProof(context.Background(), domain.MessageDeliveryInputs{
		SendTimestamp:     1,
		DeliveryTimestamp: 2,
		DeliverySignature: []byte("sig"),
		RouteWitness:      []byte("route"),
	})
	require.ErrorIs(t, err, domain.ErrCircuitUnavailable)
}

func TestCancelledContextStopsProving(t *testing.T) {
	// A single worker with a held semaphore forces the prover to wait on ctx.
	e := newTestEngine(t, Config{Workers: 1})
	e.sem <- struct{}{}
	defer func() { <-e.sem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.GenerateMessageSendProof(ctx, sendInputs())
	require.ErrorIs(t, err, context.Canceled)
}

func TestCacheBulkEviction(t *testing.T) {
	c := newProofCache(5, 2, time.Minute)

	for i := 0; i < 5; i++ {
		c.put(string(rune('a'+i)), domain.ZKProof{Meta: domain.ProofMeta{ProofID: string(rune('a' + i))}})
	}
	require.Equal(t, 5, c.len())

	// One over capacity evicts the two oldest in a single batch.
	c.put("f", domain.ZKProof{Meta: domain.ProofMeta{ProofID: "f"}})
	require.Equal(t, 4, c.len())

	_, ok := c.get("a")
	require.False(t, ok)
	_, ok = c.get("b")
	require.False(t, ok)
	_, ok = c.get("c")
	require.True(t, ok)
	_, ok = c.get("f")
	require.True(t, ok)
}

// leakyCircuit declares private witnesses that no constraint touches.
type leakyCircuit struct {
	A frontend.Variable `gnark:",public"`

	W1 frontend.Variable
	W2 frontend.Variable
	W3 frontend.Variable
	W4 frontend.Variable
}

func (c *leakyCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.W1, c.A)
	return nil
}

func TestSoundnessGateRejectsUnderConstrainedCircuit(t *testing.T) {
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &leakyCircuit{})
	require.NoError(t, err)

	err = checkSoundness(KindMessageSend, cs)
	require.ErrorIs(t, err, domain.ErrSoundness)
}

func TestCatalogPassesSoundnessGate(t *testing.T) {
	reg := fullRegistry(t)
	for _, kind := range AllKinds {
		require.True(t, reg.Available(kind), kind.CircuitID())
	}
}

func BenchmarkProofCachePutGet(b *testing.B) {
	c := newProofCache(0, 0, 0)
	proof := domain.ZKProof{CircuitID: domain.CircuitMessageSend}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := cacheKey(domain.CircuitMessageSend, []byte(strconv.Itoa(i)))
		c.put(key, proof)
		if _, ok := c.get(key); !ok {
			b.Fatal("fresh entry missed")
		}
	}
}
