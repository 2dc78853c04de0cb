package main

import (
	"os"

	"github.com/vantage-labs/orcaflow/internal/cli"
	_ "github.com/vantage-labs/orcaflow/internal/cli/commands" // registers subcommands for side effects
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	cli.SetVersion(Version)
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
