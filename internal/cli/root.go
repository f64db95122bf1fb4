/*
PURPOSE:
  Defines the root Cobra command for the codefix-bench CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Overrides shared by several commands (url, models, suite, style) live
    here as persistent flags so every command reads them the same way.
  - Ctrl+C cancels the command context; in-flight completion calls are
    cancelled and recorded as failed rows.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/codefix-bench/main.go
  - Calls: Child commands (run, serve, review, chat, list-models, suite)
  - Modifies: output.Logger (via --verbose / --log-json)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init() and to applyOverrides.

RELATED FILES:
  - cmd/codefix-bench/main.go
  - internal/cli/common.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daryltucker/codefix-bench/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string
	verbose bool
	logJSON bool

	urlOverride       string
	modelsOverride    []string
	suiteOverride     string
	suiteFileOverride string
	styleOverride     string

	rootCmd = &cobra.Command{
		Use:   "codefix-bench",
		Short: "Benchmark local code models on buggy snippets",
		Long: `Sends a fixed suite of buggy code snippets to every configured model on a
local Ollama server, measures how long each answer takes, and reports the
results as a spreadsheet, a live web dashboard, or a terminal chat.

Use 'run --help' for the headless benchmark.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.Configure(os.Stderr, verbose, logJSON)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./codefix_bench.yaml or ./bench.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&logJSON, "log-json", false, "Write logs as JSON")

	pf.StringVar(&urlOverride, "url", "", "Ollama base URL (e.g. http://localhost:11434)")
	pf.StringSliceVar(&modelsOverride, "models", nil, "Comma-separated list of models to benchmark, in order")
	pf.StringVar(&suiteOverride, "suite", "", "Name of the test suite (standard, classic)")
	pf.StringVar(&suiteFileOverride, "suite-file", "", "YAML fixture file to load suites from (see 'suite export')")
	pf.StringVar(&styleOverride, "style", "", "Prompt style: terse or review")
}
