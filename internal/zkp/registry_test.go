package zkp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

func TestLoadRegistryDegradedMode(t *testing.T) {
	dir := t.TempDir()

	// Only one circuit's artifacts on disk: the others must be skipped, not
	// fail the whole load.
	full := fullRegistry(t)
	require.NoError(t, WriteArtifacts(dir, full.desc[KindMessageSend]))

	reg, err := LoadRegistry(dir)
	require.NoError(t, err)
	require.True(t, reg.Available(KindMessageSend))
	require.False(t, reg.Available(KindMessageDelivery))
	require.False(t, reg.Available(KindForwardSecrecy))
}

func TestLoadRegistryEmptyDirIsFullyDegraded(t *testing.T) {
	reg, err := LoadRegistry(t.TempDir())
	require.NoError(t, err)
	for _, kind := range AllKinds {
		require.False(t, reg.Available(kind))
	}

	_, err = reg.descriptor(KindMessageSend)
	require.ErrorIs(t, err, domain.ErrCircuitUnavailable)
}

func TestArtifactsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	full := fullRegistry(t)
	require.NoError(t, WriteArtifacts(dir, full.desc[KindForwardSecrecy]))

	reg, err := LoadRegistry(dir)
	require.NoError(t, err)

	d, err := reg.descriptor(KindForwardSecrecy)
	require.NoError(t, err)
	require.Equal(t,
		full.desc[KindForwardSecrecy].CS.GetNbConstraints(),
		d.CS.GetNbConstraints())
}
