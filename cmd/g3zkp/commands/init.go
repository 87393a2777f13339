package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/crypto"
)

// init: provision identity keys, a signed pre-key and the one-time pool.
func initCmd() *cobra.Command {
	var peerID string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them encrypted at rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := getPassphrase()
			if err != nil {
				return err
			}

			if !force {
				if ok, err := wire.Keys.Load(wire.KeyMaterial, pass); err == nil && ok {
					return fmt.Errorf("identity already exists (use --force to replace it)")
				}
			}

			id, err := wire.Keys.GenerateIdentity()
			if err != nil {
				return err
			}
			if _, err := wire.Keys.GenerateSignedPreKey(); err != nil {
				return err
			}
			if _, err := wire.Keys.RefillOneTimePreKeys(0); err != nil {
				return err
			}
			if err := wire.Keys.Save(wire.KeyMaterial, pass); err != nil {
				return err
			}

			cfg := wire.Config
			cfg.PeerID = peerID
			if err := saveConfig(cfg); err != nil {
				return err
			}

			fmt.Printf("Identity created.\nPeer ID: %s\nFingerprint: %s\n",
				peerID, crypto.Fingerprint(id.XPub.Slice()))
			return nil
		},
	}
	cmd.Flags().StringVar(&peerID, "peer-id", "", "name to publish bundles under")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing identity")
	_ = cmd.MarkFlagRequired("peer-id")
	return cmd
}
