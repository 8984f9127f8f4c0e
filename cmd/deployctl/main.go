package main

import (
	"os"

	"github.com/deploykit-k8s/deployctl/internal/cli"
	"github.com/deploykit-k8s/deployctl/internal/logging"
)

// main is the entry point for the deployctl CLI binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(cli.ExitCode(err))
	}
}
