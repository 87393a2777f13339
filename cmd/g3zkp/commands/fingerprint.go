package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/crypto"
)

// fingerprint: print the short base58 fingerprint of the identity key so
// peers can compare it out of band.
func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Show the identity key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadKeys(); err != nil {
				return err
			}
			id, err := wire.Keys.Identity()
			if err != nil {
				return err
			}
			fmt.Println(crypto.Fingerprint(id.XPub.Slice()))
			return nil
		},
	}
}
