package main

import (
	"os"

	"github.com/jask/paramdeck/cmd/paramdeck/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
