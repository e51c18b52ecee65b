package main

import (
	"os"

	"github.com/Great2008/reads/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
