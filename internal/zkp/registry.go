package zkp

import (
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// Artifact file names inside <dir>/<circuitID>/.
const (
	circuitFile      = "circuit.r1cs"
	provingKeyFile   = "proving.key"
	verifyingKeyFile = "verifying.key"
)

// Descriptor bundles the compiled constraint system and Groth16 keys of one
// circuit. Loaded once, read-only thereafter, shared by all proof ops.
type Descriptor struct {
	Kind Kind
	CS   constraint.ConstraintSystem
	PK   groth16.ProvingKey
	VK   groth16.VerifyingKey
}

// Registry holds the circuit catalog. It is immutable after construction and
// safe for concurrent use without locking.
type Registry struct {
	desc map[Kind]*Descriptor
}

// LoadRegistry reads circuit artifacts from the on-disk layout
// <dir>/<circuitID>/{circuit.r1cs,proving.key,verifying.key}.
//
// A circuit with missing artifacts is skipped with a warning (degraded mode:
// the remaining circuits stay usable). Every loaded circuit passes the
// soundness gate or loading fails with domain.ErrSoundness.
func LoadRegistry(dir string) (*Registry, error) {
	reg := &Registry{desc: make(map[Kind]*Descriptor)}
	for _, kind := range AllKinds {
		d, err := loadDescriptor(dir, kind)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.WithField("circuit", kind.CircuitID()).
					Warn("circuit artifacts missing; running degraded")
				continue
			}
			return nil, err
		}
		reg.desc[kind] = d
		log.WithFields(log.Fields{
			"circuit":     kind.CircuitID(),
			"constraints": d.CS.GetNbConstraints(),
		}).Info("circuit loaded")
	}
	return reg, nil
}

// NewRegistry builds a registry from pre-built descriptors (used by the
// setup flow and tests). Every descriptor passes the soundness gate.
func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	reg := &Registry{desc: make(map[Kind]*Descriptor)}
	for _, d := range descriptors {
		if err := checkSoundness(d.Kind, d.CS); err != nil {
			return nil, err
		}
		reg.desc[d.Kind] = d
	}
	return reg, nil
}

// Available reports whether the kind's artifacts are loaded.
func (r *Registry) Available(kind Kind) bool {
	_, ok := r.desc[kind]
	return ok
}

// descriptor resolves a kind, failing closed for unknown circuits and with
// ErrCircuitUnavailable for known-but-unloaded ones.
func (r *Registry) descriptor(kind Kind) (*Descriptor, error) {
	if kind == KindUnknown {
		return nil, domain.ErrUnknownCircuit
	}
	d, ok := r.desc[kind]
	if !ok {
		return nil, errors.Wrap(domain.ErrCircuitUnavailable, kind.CircuitID())
	}
	return d, nil
}

func loadDescriptor(dir string, kind Kind) (*Descriptor, error) {
	base := filepath.Join(dir, kind.CircuitID())

	cs := groth16.NewCS(ecc.BN254)
	if err := readInto(filepath.Join(base, circuitFile), cs); err != nil {
		return nil, err
	}
	if err := checkSoundness(kind, cs); err != nil {
		return nil, err
	}

	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readInto(filepath.Join(base, provingKeyFile), pk); err != nil {
		return nil, err
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readInto(filepath.Join(base, verifyingKeyFile), vk); err != nil {
		return nil, err
	}
	return &Descriptor{Kind: kind, CS: cs, PK: pk, VK: vk}, nil
}

func readInto(path string, v io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := v.ReadFrom(f); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return nil
}

// checkSoundness is the static gate against under-constrained circuits: a
// compiled system must carry at least one constraint per declared private
// signal, otherwise a malicious prover could satisfy it with an invalid
// witness. Violations are fatal before deployment.
func checkSoundness(kind Kind, cs constraint.ConstraintSystem) error {
	secrets := cs.GetNbSecretVariables()
	if cs.GetNbConstraints() < secrets {
		return errors.Wrapf(domain.ErrSoundness,
			"%s: %d constraints for %d private signals",
			kind.CircuitID(), cs.GetNbConstraints(), secrets)
	}
	return nil
}
