// Package main provides the entry point for the topsize CLI.
package main

import (
	"errors"
	"os"

	"github.com/jamesainslie/topsize/cmd/topsize/tui"
)

func main() {
	if err := Execute(); err != nil {
		if errors.Is(err, tui.ErrInterrupted) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
