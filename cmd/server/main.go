// Command server runs the orcaflow MCP server: it loads the workflow
// configuration and opens the entity store, wires the engine (C1-C7)
// behind the tool surface, and speaks JSON-RPC over stdio to whatever
// MCP client launched it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vantage-labs/orcaflow/internal/mcpserver"
	"github.com/vantage-labs/orcaflow/internal/serverconfig"
	"github.com/vantage-labs/orcaflow/internal/store/sqlite"
	"github.com/vantage-labs/orcaflow/internal/tools"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "orcaflow-server",
		Short: "orcaflow MCP server: task-orchestration engine over stdio JSON-RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "orcaflow.toml", "path to server config (TOML)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := serverconfig.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	st, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	loader := workflowconfig.NewLoader()
	workflow, err := loader.Load(cfg.WorkflowDir)
	if err != nil {
		return fmt.Errorf("loading workflow config: %w", err)
	}

	svc := tools.New(st, workflow)

	registry := mcpserver.NewRegistry()
	mcpserver.RegisterTools(registry, svc)

	server := mcpserver.NewServer(registry, mcpserver.ServerInfo{Name: "orcaflow", Version: Version}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return server.Run(ctx)
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
