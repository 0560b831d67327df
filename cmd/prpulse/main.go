// main is the entry point for the prpulse CLI.
package main

import (
	"github.com/prpulse/prpulse/cmd"
	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()

	if err := cmd.Execute(); err != nil {
		// LogFatal exits, so flush stores first.
		iocache.CloseCaching()
		contract.LogFatal("Cannot run prpulse", err)
	}
}
