package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// proofs: inspect and re-verify stored proofs.
func proofsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proofs",
		Short: "Work with stored zero-knowledge proofs",
	}
	cmd.AddCommand(proofsVerifyCmd(), proofsShowCmd())
	return cmd
}

func proofsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <proof-id>",
		Short: "Re-verify a stored proof against its circuit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proof, ok, err := wire.Persistence.GetProof(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no proof with id %s", args[0])
			}
			valid, err := wire.Engine.VerifyProof(proof)
			if err != nil {
				return err
			}
			if !valid {
				return fmt.Errorf("proof %s is INVALID", args[0])
			}
			fmt.Printf("proof %s (%s) verified\n", args[0], proof.CircuitID)
			return nil
		},
	}
}

func proofsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <proof-id>",
		Short: "Print a stored proof's metadata and public signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proof, ok, err := wire.Persistence.GetProof(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no proof with id %s", args[0])
			}
			fmt.Printf("circuit:    %s\nprover:     %s\ngenerated:  %d (%d ms)\n",
				proof.CircuitID, proof.Meta.ProverID, proof.Meta.Timestamp, proof.Meta.GenerationTimeMs)
			for i, s := range proof.PublicSignals {
				fmt.Printf("signal[%d]:  %s\n", i, s)
			}
			return nil
		},
	}
}
