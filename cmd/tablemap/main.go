package main

import (
	"os"

	"github.com/nikbrunner/tablemap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
