package commands

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/crypto"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/protocol/ratchet"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/protocol/x3dh"
)

// recv: drain queued envelopes from the relay, bootstrapping responder
// sessions from attached handshake parameters as needed.
func recvCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Fetch and decrypt queued messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := loadKeys()
			if err != nil {
				return err
			}
			self := wire.Config.PeerID
			if self == "" {
				return fmt.Errorf("no peer id configured. re-run `g3zkp init --peer-id <name>`")
			}

			id, err := wire.Keys.Identity()
			if err != nil {
				return err
			}

			envs, err := wire.Relay.FetchMessages(cmd.Context(), self, limit)
			if err != nil {
				return err
			}

			accepted := 0
			for _, env := range envs {
				session, ok, err := loadSession(env.From)
				if err != nil {
					return err
				}
				if !ok {
					if env.PreKey == nil {
						log.WithField("from", env.From).Warn("message without session or handshake; dropping")
						accepted++
						continue
					}
					session, err = respondHandshake(id, *env.PreKey)
					if err != nil {
						log.WithField("from", env.From).WithError(err).Warn("handshake rejected")
						accepted++
						continue
					}
					// The consumed one-time pre-key must not survive a restart.
					if err := wire.Keys.Save(wire.KeyMaterial, pass); err != nil {
						return err
					}
				}

				p := newPipeline(env.From, session)
				p.SetDeliverySigner(func(msg []byte) []byte {
					return crypto.SignEd25519(id.EdPriv, msg)
				})

				msg, err := p.Receive(cmd.Context(), env)
				if err != nil {
					log.WithField("from", env.From).WithError(err).Warn("message could not be verified")
					accepted++
					continue
				}
				fmt.Printf("[%s] %s\n", msg.From, msg.Plaintext)
				accepted++
			}

			if accepted > 0 {
				if err := wire.Relay.AckMessages(cmd.Context(), self, accepted); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max messages to fetch (0 = all)")
	return cmd
}

// respondHandshake runs the responder side of X3DH against the attached
// parameters and seeds the session on the signed pre-key pair.
func respondHandshake(id domain.Identity, msg domain.PreKeyMessage) (*ratchet.Session, error) {
	spk, ok := wire.Keys.SignedPreKey()
	if !ok || spk.ID != msg.SignedPreKeyID {
		return nil, fmt.Errorf("handshake targets unknown signed pre-key %s", msg.SignedPreKeyID)
	}

	var opkPriv *domain.X25519Private
	if msg.OneTimePreKeyID != "" {
		opk, ok := wire.Keys.ConsumeOneTimePreKeyByID(msg.OneTimePreKeyID)
		if !ok {
			return nil, fmt.Errorf("one-time pre-key %s already consumed", msg.OneTimePreKeyID)
		}
		opkPriv = &opk.Priv
	}

	secret, err := x3dh.ResponderSecret(id, spk.Priv, opkPriv, msg)
	if err != nil {
		return nil, err
	}
	return ratchet.NewResponder(secret, domain.KeyPair{Pub: spk.Pub, Priv: spk.Priv}), nil
}
