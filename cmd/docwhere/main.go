package main

import (
	"os"

	"github.com/theplant/docwhere/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
