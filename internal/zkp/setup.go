package zkp

import (
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// Setup compiles a circuit and runs the Groth16 trusted setup. The soundness
// gate runs on the compiled system before any key is generated, so an
// under-constrained circuit can never ship artifacts.
func Setup(kind Kind) (*Descriptor, error) {
	circuit := kind.newCircuit()
	if circuit == nil {
		return nil, domain.ErrUnknownCircuit
	}

	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, errors.Wrapf(err, "compile %s", kind.CircuitID())
	}
	if err := checkSoundness(kind, cs); err != nil {
		return nil, err
	}

	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, errors.Wrapf(err, "groth16 setup %s", kind.CircuitID())
	}
	log.WithFields(log.Fields{
		"circuit":     kind.CircuitID(),
		"constraints": cs.GetNbConstraints(),
	}).Info("circuit compiled")
	return &Descriptor{Kind: kind, CS: cs, PK: pk, VK: vk}, nil
}

// WriteArtifacts stores a descriptor in the fixed on-disk layout used by
// LoadRegistry.
func WriteArtifacts(dir string, d *Descriptor) error {
	base := filepath.Join(dir, d.Kind.CircuitID())
	if err := os.MkdirAll(base, 0o700); err != nil {
		return err
	}
	if err := writeFrom(filepath.Join(base, circuitFile), d.CS); err != nil {
		return err
	}
	if err := writeFrom(filepath.Join(base, provingKeyFile), d.PK); err != nil {
		return err
	}
	return writeFrom(filepath.Join(base, verifyingKeyFile), d.VK)
}

func writeFrom(path string, v io.WriterTo) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := v.WriteTo(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}
