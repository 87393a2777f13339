package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/zkp"
)

// setup: compile the circuit catalog and write proving/verifying artifacts.
// This is the trusted-setup step; it only needs to run once per install.
func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Compile circuits and generate proving artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := wire.Config.CircuitDir
			for _, kind := range zkp.AllKinds {
				d, err := zkp.Setup(kind)
				if err != nil {
					return err
				}
				if err := zkp.WriteArtifacts(dir, d); err != nil {
					return err
				}
				fmt.Printf("%s: %d constraints\n", kind.CircuitID(), d.CS.GetNbConstraints())
			}
			fmt.Printf("artifacts written to %s\n", dir)
			return nil
		},
	}
}
