// Package serverconfig loads the orcaflow server's own runtime
// settings — database path, workflow directory, log level — from a
// small TOML file, distinct from the workflow YAML that governs status
// flows (internal/workflowconfig owns that one). Runtime settings
// change per deployment, not per project, so they get their own format
// and their own loader.
package serverconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the orcaflow server's runtime configuration.
type Config struct {
	// DatabasePath is where the SQLite store file lives.
	DatabasePath string `toml:"database_path"`
	// WorkflowDir is the directory the config loader looks for
	// workflow.yaml in.
	WorkflowDir string `toml:"workflow_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Default returns the settings used when no config file is present.
func Default() Config {
	return Config{
		DatabasePath: "orcaflow.db",
		WorkflowDir:  ".",
		LogLevel:     "info",
	}
}

// Load reads path as TOML, falling back to Default() for any field left
// unset in the file (including when the file doesn't exist at all).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("serverconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}
