package main

import (
	"os"

	"collection-points/cmd/pointctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
