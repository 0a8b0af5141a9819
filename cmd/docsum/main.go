package main

import (
	"os"

	"github.com/xostack/docsum/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
