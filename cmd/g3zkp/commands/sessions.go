package commands

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/app"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/pipeline"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/protocol/ratchet"
)

func saveConfig(cfg app.Config) error {
	if err := app.SaveConfig(cfg); err != nil {
		return err
	}
	wire.Config = cfg
	return nil
}

// loadSession resumes the persisted ratchet session with peer, if any.
func loadSession(peer string) (*ratchet.Session, bool, error) {
	state, ok, err := wire.Persistence.LoadSession(wire.Config.PeerID + "." + peer)
	if err != nil || !ok {
		return nil, false, err
	}
	return ratchet.NewFromState(state), true, nil
}

// newPipeline builds the message pipeline for a session with peer.
func newPipeline(peer string, session *ratchet.Session) *pipeline.Pipeline {
	return pipeline.New(wire.Config.PeerID, peer, session, wire.Engine, wire.Relay, wire.Persistence)
}

// Pending handshake parameters wait on disk between `handshake` and the first
// `send`, keyed by peer.
func pendingPath(peer string) string {
	return filepath.Join(wire.Config.Home, "pending-"+peer+".json")
}

func savePendingHandshake(peer string, msg domain.PreKeyMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode pending handshake")
	}
	return os.WriteFile(pendingPath(peer), raw, 0o600)
}

func loadPendingHandshake(peer string) (domain.PreKeyMessage, bool, error) {
	raw, err := os.ReadFile(pendingPath(peer))
	if errors.Is(err, os.ErrNotExist) {
		return domain.PreKeyMessage{}, false, nil
	}
	if err != nil {
		return domain.PreKeyMessage{}, false, err
	}
	var msg domain.PreKeyMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return domain.PreKeyMessage{}, false, errors.Wrap(err, "decode pending handshake")
	}
	return msg, true, nil
}

func clearPendingHandshake(peer string) {
	_ = os.Remove(pendingPath(peer))
}
