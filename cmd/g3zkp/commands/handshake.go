package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/protocol/ratchet"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/protocol/x3dh"
)

// handshake <peer>: fetch the peer's bundle, run the initiator side of X3DH
// and seed a ratchet session. The handshake parameters ride on the first send.
func handshakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handshake <peer>",
		Short: "Establish a session with a peer from their published bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadKeys(); err != nil {
				return err
			}
			peer := args[0]

			id, err := wire.Keys.Identity()
			if err != nil {
				return err
			}
			bundle, err := wire.Relay.FetchPreKeyBundle(cmd.Context(), peer)
			if err != nil {
				return err
			}

			res, err := x3dh.InitiatorSecret(id, bundle)
			if err != nil {
				return err
			}
			session, err := ratchet.NewInitiator(res.Secret, bundle.SignedPreKey)
			if err != nil {
				return err
			}

			sessionID := wire.Config.PeerID + "." + peer
			if err := wire.Persistence.SaveSession(sessionID, session.State()); err != nil {
				return err
			}
			if err := savePendingHandshake(peer, domain.PreKeyMessage{
				InitiatorIdentityKey: id.XPub,
				EphemeralKey:         res.EphemeralPub,
				SignedPreKeyID:       res.SignedPreKeyID,
				OneTimePreKeyID:      res.OneTimePreKeyID,
			}); err != nil {
				return err
			}

			fmt.Printf("session established with %s\n", peer)
			return nil
		},
	}
}
