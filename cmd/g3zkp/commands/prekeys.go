package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// prekeys: inspect and top up the one-time pre-key pool.
func prekeysCmd() *cobra.Command {
	var refill bool
	var target int

	cmd := &cobra.Command{
		Use:   "prekeys",
		Short: "Show or refill the one-time pre-key pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := loadKeys()
			if err != nil {
				return err
			}
			if refill {
				added, err := wire.Keys.RefillOneTimePreKeys(target)
				if err != nil {
					return err
				}
				if err := wire.Keys.Save(wire.KeyMaterial, pass); err != nil {
					return err
				}
				fmt.Printf("added %d one-time pre-keys\n", added)
			}
			fmt.Printf("pool size: %d\n", wire.Keys.PoolSize())
			return nil
		},
	}
	cmd.Flags().BoolVar(&refill, "refill", false, "top the pool up to the target")
	cmd.Flags().IntVar(&target, "target", 0, "pool target (default from config)")
	return cmd
}
