package main

import (
	"os"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/cmd/g3zkp/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
