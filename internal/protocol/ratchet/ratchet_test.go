package ratchet_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/crypto"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/protocol/ratchet"
)

// newPair seeds an initiator/responder session pair from the same secret, the
// way a completed X3DH would.
func newPair(t *testing.T) (alice, bob *ratchet.Session) {
	t.Helper()
	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	secret := bytes.Repeat([]byte{0x42}, 32)
	alice, err = ratchet.NewInitiator(append([]byte(nil), secret...), spkPub)
	if err != nil {
		t.Fatalf("NewInitiator: %v", err)
	}
	bob = ratchet.NewResponder(append([]byte(nil), secret...), domain.KeyPair{Pub: spkPub, Priv: spkPriv})
	return alice, bob
}

// relay stages and commits one header on the receiving session, returning the
// resolved message key.
func relay(t *testing.T, s *ratchet.Session, header domain.RatchetHeader) domain.MessageKey {
	t.Helper()
	staged, err := s.StageReceive(header)
	if err != nil {
		t.Fatalf("StageReceive(n=%d): %v", header.MessageNumber, err)
	}
	staged.Commit()
	return staged.Key
}

func TestRoundTripBothDirections(t *testing.T) {
	alice, bob := newPair(t)

	mkA, hdrA, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("alice RatchetSend: %v", err)
	}
	got := relay(t, bob, hdrA)
	if !bytes.Equal(mkA.Key, got.Key) {
		t.Fatal("bob derived a different message key")
	}

	// Bob can only send after his first receive performed the DH step.
	mkB, hdrB, err := bob.RatchetSend()
	if err != nil {
		t.Fatalf("bob RatchetSend: %v", err)
	}
	got = relay(t, alice, hdrB)
	if !bytes.Equal(mkB.Key, got.Key) {
		t.Fatal("alice derived a different message key")
	}
}

func TestResponderCannotSendBeforeFirstReceive(t *testing.T) {
	_, bob := newPair(t)
	if _, _, err := bob.RatchetSend(); err == nil {
		t.Fatal("want error sending on an uninitialised chain")
	}
}

func TestMessageNumbersAreMonotonic(t *testing.T) {
	alice, _ := newPair(t)
	for want := uint32(0); want < 5; want++ {
		_, hdr, err := alice.RatchetSend()
		if err != nil {
			t.Fatalf("RatchetSend: %v", err)
		}
		if hdr.MessageNumber != want {
			t.Fatalf("message number %d, want %d", hdr.MessageNumber, want)
		}
	}
}

func TestOutOfOrderDelivery(t *testing.T) {
	alice, bob := newPair(t)

	keys := make([]domain.MessageKey, 5)
	headers := make([]domain.RatchetHeader, 5)
	for i := range keys {
		mk, hdr, err := alice.RatchetSend()
		if err != nil {
			t.Fatalf("RatchetSend %d: %v", i, err)
		}
		keys[i], headers[i] = mk, hdr
	}

	for _, i := range []int{4, 2, 0, 3, 1} {
		got := relay(t, bob, headers[i])
		if !bytes.Equal(got.Key, keys[i].Key) {
			t.Fatalf("message %d: wrong key", i)
		}
	}
}

func TestConsumedKeyIsRejected(t *testing.T) {
	alice, bob := newPair(t)

	_, hdr, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("RatchetSend: %v", err)
	}
	relay(t, bob, hdr)

	if _, err := bob.StageReceive(hdr); err == nil {
		t.Fatal("want error replaying a consumed message number")
	}
}

func TestSkippedKeyJumpBoundIsEnforced(t *testing.T) {
	alice, bob := newPair(t)

	_, hdr, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("RatchetSend: %v", err)
	}
	hdr.MessageNumber = 1001 // would require caching 1001 keys in one jump

	if _, err := bob.StageReceive(hdr); err != domain.ErrMalformedHeader {
		t.Fatalf("want ErrMalformedHeader, got %v", err)
	}
}

func TestSkippedKeyCacheEvictsOldestFirst(t *testing.T) {
	alice, bob := newPair(t)

	keys := make([]domain.MessageKey, 1003)
	headers := make([]domain.RatchetHeader, 1003)
	for i := range keys {
		mk, hdr, err := alice.RatchetSend()
		if err != nil {
			t.Fatalf("RatchetSend %d: %v", i, err)
		}
		keys[i], headers[i] = mk, hdr
	}

	// Receiving message 1000 caches keys 0..999, filling the cache exactly.
	relay(t, bob, headers[1000])
	// Receiving 1002 caches key 1001, evicting the oldest entry (key 0).
	relay(t, bob, headers[1002])

	if _, err := bob.StageReceive(headers[0]); err == nil {
		t.Fatal("want error for evicted skipped key")
	}
	got := relay(t, bob, headers[1])
	if !bytes.Equal(got.Key, keys[1].Key) {
		t.Fatal("message 1: wrong key after eviction")
	}
}

func TestPreviousChainLengthRecoversWithheldKeys(t *testing.T) {
	alice, bob := newPair(t)

	// m0 delivered, m1 withheld in flight.
	_, hdr0, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("RatchetSend m0: %v", err)
	}
	relay(t, bob, hdr0)
	mk1, hdr1, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("RatchetSend m1: %v", err)
	}

	// A reply from bob rotates alice's sending chain.
	_, hdrB, err := bob.RatchetSend()
	if err != nil {
		t.Fatalf("bob RatchetSend: %v", err)
	}
	relay(t, alice, hdrB)

	// m2 arrives on the new chain before m1. Its header's previous chain
	// length tells bob to bank m1's key before stepping.
	mk2, hdr2, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("RatchetSend m2: %v", err)
	}
	if hdr2.PreviousChainLength != 2 {
		t.Fatalf("previous chain length %d, want 2", hdr2.PreviousChainLength)
	}
	got := relay(t, bob, hdr2)
	if !bytes.Equal(got.Key, mk2.Key) {
		t.Fatal("m2: wrong key")
	}

	// The withheld m1 is now served from the skipped-key cache.
	got = relay(t, bob, hdr1)
	if !bytes.Equal(got.Key, mk1.Key) {
		t.Fatal("m1: wrong key from skipped cache")
	}
}

func TestStageReceiveLeavesStateUntouchedUntilCommit(t *testing.T) {
	alice, bob := newPair(t)

	_, hdr, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("RatchetSend: %v", err)
	}

	before := bob.State()
	staged, err := bob.StageReceive(hdr)
	if err != nil {
		t.Fatalf("StageReceive: %v", err)
	}
	if diff := cmp.Diff(before, bob.State()); diff != "" {
		t.Fatalf("state changed before commit:\n%s", diff)
	}

	staged.Commit()
	if diff := cmp.Diff(before, bob.State()); diff == "" {
		t.Fatal("state unchanged after commit")
	}
}

func TestStateSurvivesPersistenceRoundTrip(t *testing.T) {
	alice, bob := newPair(t)

	_, hdr, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("RatchetSend: %v", err)
	}
	relay(t, bob, hdr)

	resumed := ratchet.NewFromState(bob.State())

	mk, hdr2, err := alice.RatchetSend()
	if err != nil {
		t.Fatalf("RatchetSend: %v", err)
	}
	got := relay(t, resumed, hdr2)
	if !bytes.Equal(got.Key, mk.Key) {
		t.Fatal("resumed session derived a different key")
	}
}

func BenchmarkRatchetSend(b *testing.B) {
	_, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		b.Fatalf("GenerateX25519: %v", err)
	}
	alice, err := ratchet.NewInitiator(bytes.Repeat([]byte{0x42}, 32), spkPub)
	if err != nil {
		b.Fatalf("NewInitiator: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := alice.RatchetSend(); err != nil {
			b.Fatal(err)
		}
	}
}
