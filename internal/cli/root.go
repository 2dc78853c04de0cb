// Package cli implements orcactl, the operator CLI for calling the
// orchestration engine's tool surface directly (no MCP transport) —
// grounded on the teacher's cobra/viper/pterm root command, adapted
// from a markdown-sync CLI into a thin client over internal/tools.
package cli

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vantage-labs/orcaflow/internal/store/sqlite"
	"github.com/vantage-labs/orcaflow/internal/tools"
	"github.com/vantage-labs/orcaflow/internal/workflowconfig"
)

// GlobalConfig holds flags shared by every subcommand.
type GlobalConfig struct {
	JSON        bool
	NoColor     bool
	DBPath      string
	WorkflowDir string
}

// Global is the process-wide GlobalConfig instance, populated by
// RootCmd's PersistentPreRunE before any subcommand runs.
var Global = &GlobalConfig{}

// RootCmd is orcactl's base command.
var RootCmd = &cobra.Command{
	Use:     "orcactl",
	Short:   "orcaflow operator CLI: drive the task-orchestration engine directly",
	Version: "dev",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		Global.JSON = viper.GetBool("json")
		Global.NoColor = viper.GetBool("no-color")
		Global.DBPath = viper.GetString("db")
		Global.WorkflowDir = viper.GetString("workflow-dir")
		if Global.NoColor {
			pterm.DisableColor()
		}
		return nil
	},
}

// SetVersion sets the version string from build-time injection.
func SetVersion(version string) { RootCmd.Version = version }

func init() {
	RootCmd.PersistentFlags().Bool("json", false, "output in JSON format (machine-readable)")
	RootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	RootCmd.PersistentFlags().String("db", "orcaflow.db", "SQLite database path")
	RootCmd.PersistentFlags().String("workflow-dir", ".", "directory to look for workflow.yaml in")

	for _, name := range []string{"json", "no-color", "db", "workflow-dir"} {
		if err := viper.BindPFlag(name, RootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("ORCAFLOW")
	viper.AutomaticEnv()
}

// Service opens the store and loads the workflow config named by the
// global flags, returning a ready-to-use tool Service. Every subcommand
// calls this once at the start of its RunE.
func Service() (*tools.Service, error) {
	st, err := sqlite.Open(Global.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	cfg, err := workflowconfig.NewLoader().Load(Global.WorkflowDir)
	if err != nil {
		return nil, fmt.Errorf("loading workflow config: %w", err)
	}
	return tools.New(st, cfg), nil
}

// PrintEnvelope renders a tool envelope either as raw JSON (--json) or
// as a pterm-styled human summary.
func PrintEnvelope(env *tools.Envelope) error {
	if Global.JSON {
		return OutputJSON(env)
	}
	if env.Success {
		pterm.Success.Println(env.Message)
	} else {
		pterm.Error.Printfln("%s: %s", env.Error.Code, env.Message)
	}
	if env.Data != nil {
		return OutputJSON(env.Data)
	}
	return nil
}

// OutputJSON writes v to stdout as indented JSON.
func OutputJSON(v any) error {
	return jsonEncode(os.Stdout, v)
}
