package main

import (
	"os"

	"github.com/rustyeddy/futsim/cmd/futsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
