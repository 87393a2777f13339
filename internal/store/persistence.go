package store

import (
	"path/filepath"
	"sync"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

const (
	sessionsDir = "sessions"
	proofsDir   = "proofs"
)

// FileStore implements domain.Persistence on disk: one JSON file per session
// and per proof, written atomically via temp file plus rename.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// SaveSession writes one session state atomically. A partially written
// ratchet state can desynchronize a session undetectably, hence the
// temp-and-rename discipline.
func (s *FileStore) SaveSession(sessionID string, state domain.RatchetState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(filepath.Join(s.dir, sessionsDir)); err != nil {
		return err
	}
	return writeJSON(sessionPath(s.dir, sessionID), state, 0o600)
}

// LoadSession retrieves a stored session state.
func (s *FileStore) LoadSession(sessionID string) (domain.RatchetState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state domain.RatchetState
	ok, err := readJSON(sessionPath(s.dir, sessionID), &state)
	if err != nil {
		return domain.RatchetState{}, false, err
	}
	return state, ok, nil
}

// SaveProof stores a generated proof keyed by its proof id.
func (s *FileStore) SaveProof(proof domain.ZKProof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(filepath.Join(s.dir, proofsDir)); err != nil {
		return err
	}
	return writeJSON(proofPath(s.dir, proof.Meta.ProofID), proof, 0o600)
}

// GetProof retrieves a stored proof by id.
func (s *FileStore) GetProof(proofID string) (domain.ZKProof, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var proof domain.ZKProof
	ok, err := readJSON(proofPath(s.dir, proofID), &proof)
	if err != nil {
		return domain.ZKProof{}, false, err
	}
	return proof, ok, nil
}

func sessionPath(dir, id string) string {
	return filepath.Join(dir, sessionsDir, sanitize(id)+".json")
}

func proofPath(dir, id string) string {
	return filepath.Join(dir, proofsDir, sanitize(id)+".json")
}

// sanitize keeps ids usable as file names.
func sanitize(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Compile-time assertion that FileStore implements domain.Persistence.
var _ domain.Persistence = (*FileStore)(nil)
