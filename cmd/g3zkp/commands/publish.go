package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// publish: push the public pre-key bundle to the relay directory.
func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish the pre-key bundle to the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadKeys(); err != nil {
				return err
			}
			if wire.Config.PeerID == "" {
				return fmt.Errorf("no peer id configured. re-run `g3zkp init --peer-id <name>`")
			}

			bundle, err := wire.Keys.Bundle(wire.Config.PeerID)
			if err != nil {
				return err
			}
			if err := wire.Relay.RegisterPreKeyBundle(cmd.Context(), bundle); err != nil {
				return err
			}
			fmt.Printf("bundle published for %s (%d one-time pre-keys)\n",
				bundle.PeerID, len(bundle.OneTimePreKeys))
			return nil
		},
	}
}
