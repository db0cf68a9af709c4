package main

import (
	"os"

	"github.com/cargodeck/cargodeck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
