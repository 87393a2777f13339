package keystore

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/crypto"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// DefaultPoolTarget is how many one-time pre-keys Refill keeps available.
const DefaultPoolTarget = 100

// ErrNoIdentity is returned when key material is requested before
// GenerateIdentity (or a load from the backing store) has run.
var ErrNoIdentity = errors.New("keystore: no identity provisioned")

// Store owns all long-term and pre-key material for one node. Secret bytes
// never leave the store except into the handshake and ratchet internals.
//
// The one-time pool is shared across all inbound handshakes, so every method
// takes the single mutex (single-writer discipline).
type Store struct {
	mu sync.Mutex

	identity *domain.Identity
	spk      *domain.SignedPreKey
	oneTime  []domain.OneTimePreKeyPair // FIFO: consume from the front

	poolTarget int
	node       *snowflake.Node
}

// New returns an empty in-memory keystore with the given pool target.
// A target of zero selects DefaultPoolTarget.
func New(poolTarget int) (*Store, error) {
	if poolTarget <= 0 {
		poolTarget = DefaultPoolTarget
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, errors.Wrap(err, "keystore: snowflake node")
	}
	return &Store{poolTarget: poolTarget, node: node}, nil
}

// GenerateIdentity creates fresh X25519 and Ed25519 pairs. An entropy-source
// failure is fatal and surfaces as an error.
func (s *Store) GenerateIdentity() (domain.Identity, error) {
	xPriv, xPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.Identity{}, errors.Wrap(err, "keystore: generate X25519")
	}
	edPriv, edPub, err := crypto.GenerateEd25519()
	if err != nil {
		return domain.Identity{}, errors.Wrap(err, "keystore: generate Ed25519")
	}

	id := domain.Identity{
		XPub:       xPub,
		XPriv:      xPriv,
		EdPub:      edPub,
		EdPriv:     edPriv,
		KeyID:      s.node.Generate().String(),
		CreatedUTC: time.Now().Unix(),
	}

	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
	return id, nil
}

// Identity returns the provisioned identity.
func (s *Store) Identity() (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return domain.Identity{}, ErrNoIdentity
	}
	return *s.identity, nil
}

// GenerateSignedPreKey creates a new signed pre-key, signs its public half
// with the identity Ed25519 key and makes it current.
func (s *Store) GenerateSignedPreKey() (domain.SignedPreKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return domain.SignedPreKey{}, ErrNoIdentity
	}

	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.SignedPreKey{}, errors.Wrap(err, "keystore: generate signed pre-key")
	}
	spk := domain.SignedPreKey{
		ID:   "spk-" + s.node.Generate().String(),
		Priv: priv,
		Pub:  pub,
		Sig:  crypto.SignEd25519(s.identity.EdPriv, pub[:]),
	}
	s.spk = &spk
	return spk, nil
}

// SignedPreKey returns the current signed pre-key.
func (s *Store) SignedPreKey() (domain.SignedPreKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spk == nil {
		return domain.SignedPreKey{}, false
	}
	return *s.spk, true
}

// RefillOneTimePreKeys tops the pool up to target. It is idempotent: only
// the deficit is generated. It returns how many keys were added.
func (s *Store) RefillOneTimePreKeys(target int) (int, error) {
	if target <= 0 {
		target = s.poolTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for len(s.oneTime) < target {
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return added, errors.Wrap(err, "keystore: generate one-time pre-key")
		}
		s.oneTime = append(s.oneTime, domain.OneTimePreKeyPair{
			ID:   "opk-" + s.node.Generate().String(),
			Priv: priv,
			Pub:  pub,
		})
		added++
	}
	return added, nil
}

// ConsumeOneTimePreKey pops the oldest one-time pre-key. An exhausted pool
// is not an error: callers proceed without DH4 and the event is logged as a
// warning.
func (s *Store) ConsumeOneTimePreKey() (domain.OneTimePreKeyPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.oneTime) == 0 {
		log.Warn("one-time pre-key pool exhausted; handshake degrades to 3-DH")
		return domain.OneTimePreKeyPair{}, false
	}
	p := s.oneTime[0]
	s.oneTime = s.oneTime[1:]
	return p, true
}

// ConsumeOneTimePreKeyByID redeems a specific one-time pre-key referenced by
// an inbound pre-key message. Each key is served at most once.
func (s *Store) ConsumeOneTimePreKeyByID(id string) (domain.OneTimePreKeyPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.oneTime {
		if p.ID == id {
			s.oneTime = append(s.oneTime[:i], s.oneTime[i+1:]...)
			return p, true
		}
	}
	return domain.OneTimePreKeyPair{}, false
}

// PoolSize reports how many one-time pre-keys remain.
func (s *Store) PoolSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.oneTime)
}

// Bundle assembles the public pre-key bundle to publish for peerID.
func (s *Store) Bundle(peerID string) (domain.PreKeyBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return domain.PreKeyBundle{}, ErrNoIdentity
	}
	if s.spk == nil {
		return domain.PreKeyBundle{}, errors.New("keystore: no signed pre-key; generate one first")
	}

	oneTime := make([]domain.OneTimePreKeyPublic, 0, len(s.oneTime))
	for _, p := range s.oneTime {
		oneTime = append(oneTime, domain.OneTimePreKeyPublic{ID: p.ID, Pub: p.Pub})
	}
	return domain.PreKeyBundle{
		PeerID:                peerID,
		IdentityKey:           s.identity.XPub,
		SigningKey:            s.identity.EdPub,
		SignedPreKeyID:        s.spk.ID,
		SignedPreKey:          s.spk.Pub,
		SignedPreKeySignature: s.spk.Sig,
		OneTimePreKeys:        oneTime,
	}, nil
}
