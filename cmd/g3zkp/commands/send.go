package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// send <peer> <message>: encrypt, prove and deliver one message.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt and send a message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadKeys(); err != nil {
				return err
			}
			peer := args[0]

			session, ok, err := loadSession(peer)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no session with %s. run `g3zkp handshake %s` first", peer, peer)
			}

			p := newPipeline(peer, session)
			if msg, ok, err := loadPendingHandshake(peer); err != nil {
				return err
			} else if ok {
				p.AttachHandshake(msg)
			}

			_, receipt, err := p.Send(cmd.Context(), []byte(args[1]))
			if err != nil {
				return err
			}
			clearPendingHandshake(peer)
			fmt.Printf("sent via %s\n", receipt.DeliveryMethod)
			return nil
		},
	}
}
