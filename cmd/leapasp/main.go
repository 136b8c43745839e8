// Package main provides the leapasp command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/leapasp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
