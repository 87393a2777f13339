package ratchet

import (
	"encoding/binary"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/crypto"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/util/memzero"
)

const (
	rootLabel  = "g3zkp/dr/root"
	chainLabel = "g3zkp/dr/chain"

	// maxSkipped bounds the skipped-key cache. Eviction is FIFO by
	// insertion because skipped keys are ordered by chain position.
	maxSkipped = 1000
)

var errChainUninitialised = errors.New("ratchet: chain key is uninitialised")

// Session owns the Double Ratchet state for one (local, remote) pair.
// All methods serialise on an internal mutex; sessions for different peers
// run fully in parallel.
type Session struct {
	mu sync.Mutex
	st domain.RatchetState
}

// NewInitiator seeds a session from an X3DH secret. The initiator generates
// its first ratchet pair immediately and anchors the sending chain on the
// peer's signed pre-key, so the first message can be sent without a round
// trip. The secret is wiped before returning.
func NewInitiator(secret []byte, peerSignedPreKey domain.X25519Public) (*Session, error) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, errors.Wrap(err, "ratchet: initiator ratchet key")
	}

	dh, err := crypto.DH(priv, peerSignedPreKey)
	if err != nil {
		return nil, errors.Wrap(err, "ratchet: initiator DH")
	}
	rootKey, sendCK := kdfRK(secret, dh[:])
	memzero.Zero(dh[:])
	memzero.Zero(secret)

	return &Session{st: domain.RatchetState{
		RootKey:   rootKey,
		DHPriv:    priv,
		DHPub:     pub,
		PeerDHPub: peerSignedPreKey,
		SendCK:    sendCK,
		Skipped:   make(map[string][]byte),
	}}, nil
}

// NewResponder seeds a session from an X3DH secret. The responder's initial
// ratchet pair is the signed pre-key the initiator targeted; chains start on
// the first inbound DH step. The secret is wiped before returning.
func NewResponder(secret []byte, signedPreKey domain.KeyPair) *Session {
	rootKey := append([]byte(nil), secret...)
	memzero.Zero(secret)

	return &Session{st: domain.RatchetState{
		RootKey: rootKey,
		DHPriv:  signedPreKey.Priv,
		DHPub:   signedPreKey.Pub,
		Skipped: make(map[string][]byte),
	}}
}

// NewFromState resumes a persisted session.
func NewFromState(state domain.RatchetState) *Session {
	if state.Skipped == nil {
		state.Skipped = make(map[string][]byte)
	}
	return &Session{st: state}
}

// State returns a deep copy of the current ratchet state for persistence.
func (s *Session) State() domain.RatchetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.st)
}

// RatchetSend derives the next message key from the sending chain and
// advances it. The returned header travels in the clear and must be bound
// into the AEAD associated data by the caller.
func (s *Session) RatchetSend() (domain.MessageKey, domain.RatchetHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.st.SendCK) == 0 {
		return domain.MessageKey{}, domain.RatchetHeader{}, errChainUninitialised
	}

	nextCK, mk := kdfCK(s.st.SendCK)
	memzero.Zero(s.st.SendCK)
	s.st.SendCK = nextCK

	header := domain.RatchetHeader{
		RatchetPub:          s.st.DHPub.Slice(),
		PreviousChainLength: s.st.PN,
		MessageNumber:       s.st.Ns,
	}
	key := domain.MessageKey{Key: mk, Number: s.st.Ns, RatchetPub: s.st.DHPub}
	s.st.Ns++
	return key, header, nil
}

// Staged is a receive computed on a copy of the session state. Nothing is
// committed until Commit, so a failed decrypt leaves the session untouched.
type Staged struct {
	Key domain.MessageKey

	session *Session
	state   domain.RatchetState
	done    bool
}

// Commit applies the staged state to the session. It is a no-op after the
// first call.
func (g *Staged) Commit() {
	if g.done {
		return
	}
	g.done = true
	g.session.mu.Lock()
	g.session.st = g.state
	g.session.mu.Unlock()
}

// StageReceive resolves the message key for an inbound header without
// mutating committed state.
//
// Resolution order: skipped-key cache first (out-of-order arrival), then
// catch-up derivation within the current receiving chain, and for a new
// remote ratchet key a full DH step. Before the step, the previous receiving
// chain is advanced up to header.PreviousChainLength so keys for still
// in-flight messages from the old chain are cached rather than lost.
func (s *Session) StageReceive(header domain.RatchetHeader) (*Staged, error) {
	if len(header.RatchetPub) != 32 {
		return nil, domain.ErrMalformedHeader
	}

	s.mu.Lock()
	st := cloneState(s.st)
	s.mu.Unlock()

	var remote domain.X25519Public
	copy(remote[:], header.RatchetPub)

	sameChain := remote == st.PeerDHPub

	// Out-of-order message from a chain we already advanced past.
	if id := skippedKeyID(remote, header.MessageNumber); st.Skipped[id] != nil {
		mk := st.Skipped[id]
		deleteSkipped(&st, id)
		return &Staged{
			Key:     domain.MessageKey{Key: mk, Number: header.MessageNumber, RatchetPub: remote},
			session: s,
			state:   st,
		}, nil
	}

	if sameChain && header.MessageNumber < st.Nr {
		// Behind the chain but not cached: the key was already consumed.
		return nil, errors.Wrap(domain.ErrAuthentication, "ratchet: message key already consumed")
	}

	if !sameChain {
		// Cache keys the old chain still owes us, bounded by the header's
		// previous-chain length, then perform the DH step.
		if err := skipUntil(&st, st.PeerDHPub, header.PreviousChainLength); err != nil {
			return nil, err
		}
		if err := dhStep(&st, remote); err != nil {
			return nil, err
		}
	}

	// Catch up within the (possibly fresh) receiving chain.
	if err := skipUntil(&st, remote, header.MessageNumber); err != nil {
		return nil, err
	}

	if len(st.RecvCK) == 0 {
		return nil, errChainUninitialised
	}
	nextCK, mk := kdfCK(st.RecvCK)
	memzero.Zero(st.RecvCK)
	st.RecvCK = nextCK
	st.Nr = header.MessageNumber + 1

	return &Staged{
		Key:     domain.MessageKey{Key: mk, Number: header.MessageNumber, RatchetPub: remote},
		session: s,
		state:   st,
	}, nil
}

// dhStep advances the root for the new remote key, deriving a fresh
// receiving chain, a fresh local ratchet pair and a fresh sending chain.
func dhStep(st *domain.RatchetState, remote domain.X25519Public) error {
	dh, err := crypto.DH(st.DHPriv, remote)
	if err != nil {
		return domain.ErrMalformedHeader
	}
	rootKey, recvCK := kdfRK(st.RootKey, dh[:])
	memzero.Zero(dh[:])

	newPriv, newPub, err := crypto.GenerateX25519()
	if err != nil {
		return errors.Wrap(err, "ratchet: new ratchet key")
	}
	dh2, err := crypto.DH(newPriv, remote)
	if err != nil {
		return domain.ErrMalformedHeader
	}
	rootKey2, sendCK := kdfRK(rootKey, dh2[:])
	memzero.Zero(dh2[:])
	memzero.Zero(rootKey)

	st.PN = st.Ns
	st.Ns, st.Nr = 0, 0
	st.RootKey = rootKey2
	st.DHPriv, st.DHPub = newPriv, newPub
	st.PeerDHPub = remote
	st.SendCK, st.RecvCK = sendCK, recvCK
	return nil
}

// skipUntil derives and caches message keys for chain positions [Nr, until)
// of the receiving chain keyed by pub. The cache is capped at maxSkipped
// with FIFO eviction of the oldest-inserted entry.
func skipUntil(st *domain.RatchetState, pub domain.X25519Public, until uint32) error {
	if st.Nr >= until {
		return nil
	}
	if len(st.RecvCK) == 0 {
		// Nothing received on this chain yet; nothing to skip.
		return nil
	}
	if until-st.Nr > maxSkipped {
		return domain.ErrMalformedHeader
	}
	for st.Nr < until {
		nextCK, mk := kdfCK(st.RecvCK)
		memzero.Zero(st.RecvCK)
		st.RecvCK = nextCK
		insertSkipped(st, skippedKeyID(pub, st.Nr), mk)
		st.Nr++
	}
	return nil
}

func insertSkipped(st *domain.RatchetState, id string, mk []byte) {
	if st.Skipped == nil {
		st.Skipped = make(map[string][]byte)
	}
	for len(st.SkipOrder) >= maxSkipped {
		oldest := st.SkipOrder[0]
		st.SkipOrder = st.SkipOrder[1:]
		memzero.Zero(st.Skipped[oldest])
		delete(st.Skipped, oldest)
	}
	st.Skipped[id] = mk
	st.SkipOrder = append(st.SkipOrder, id)
}

func deleteSkipped(st *domain.RatchetState, id string) {
	delete(st.Skipped, id)
	for i, v := range st.SkipOrder {
		if v == id {
			st.SkipOrder = append(st.SkipOrder[:i], st.SkipOrder[i+1:]...)
			break
		}
	}
}

func skippedKeyID(pub domain.X25519Public, n uint32) string {
	b := make([]byte, 36)
	copy(b, pub[:])
	binary.BigEndian.PutUint32(b[32:], n)
	return hex.EncodeToString(b)
}

func cloneState(st domain.RatchetState) domain.RatchetState {
	out := st
	out.RootKey = append([]byte(nil), st.RootKey...)
	out.SendCK = append([]byte(nil), st.SendCK...)
	out.RecvCK = append([]byte(nil), st.RecvCK...)
	out.Skipped = make(map[string][]byte, len(st.Skipped))
	for k, v := range st.Skipped {
		out.Skipped[k] = append([]byte(nil), v...)
	}
	out.SkipOrder = append([]string(nil), st.SkipOrder...)
	return out
}

// kdfRK mixes a DH output into the root key, returning the new root key and
// a chain key.
func kdfRK(rootKey, dh []byte) (newRK, ck []byte) {
	return crypto.HKDFPair(dh, rootKey, rootLabel)
}

// kdfCK advances a chain key, returning the next chain key and the message
// key for the current index.
func kdfCK(ck []byte) (nextCK, mk []byte) {
	return crypto.HKDFPair(ck, nil, chainLabel)
}
