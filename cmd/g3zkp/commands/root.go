package commands

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/app"
)

var (
	home       string
	passphrase string
	relayURL   string
	verbose    bool

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "g3zkp",
		Short:         "End-to-end encrypted messaging with zero-knowledge proof attestation",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".g3zkp")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			}

			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			if relayURL != "" {
				cfg.RelayURL = relayURL
			}
			if !verbose {
				if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
					log.SetLevel(lvl)
				}
			}

			wire, err = app.NewWire(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.g3zkp)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting key material (prompted if omitted)")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		prekeysCmd(),
		publishCmd(),
		handshakeCmd(),
		sendCmd(),
		recvCmd(),
		setupCmd(),
		proofsCmd(),
	)
	return root.Execute()
}

// getPassphrase returns the -p flag value or prompts on the terminal.
func getPassphrase() (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty passphrase")
	}
	return string(raw), nil
}

// loadKeys decrypts the persisted key material into the wire's keystore.
func loadKeys() (string, error) {
	pass, err := getPassphrase()
	if err != nil {
		return "", err
	}
	ok, err := wire.Keys.Load(wire.KeyMaterial, pass)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no identity found. run `g3zkp init` first")
	}
	return pass, nil
}
