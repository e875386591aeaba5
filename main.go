package main

import (
	"os"

	"github.com/itskeerthanraj/NeuroFleetX/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
