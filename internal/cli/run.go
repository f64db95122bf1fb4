/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full benchmark matrix headlessly and writes one artifact.

REQUIREMENTS:
  User-specified:
  - Run every test case against every model, in order, and save the table
    to a spreadsheet (detail sheet plus a Model x Language speed pivot).
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - A failed model call is a row, not an error; only the artifact write
    can fail the command.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner, internal/output.WriteArtifact
  - Uses: internal/config, internal/suite

ERROR HANDLING:
  - Returns error if config load, suite load, or the artifact write fails.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Runner.Run -> WriteArtifact.

USAGE:
  codefix-bench run --models qwen2.5-coder:1.5b -o ./results

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/cli/common.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daryltucker/codefix-bench/internal/engine"
	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/output"
)

var (
	outputDirOverride  string
	outputFileOverride string
	formatOverride     string
	cooldownOverride   time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark matrix and export the results",
	Long: `Runs every test case of the suite against every configured model, one call
at a time, and records the wall-clock latency of each answer.

A call that fails (model missing, server down, timeout) is recorded as a row
with its error text as the output, and the run continues.

When the matrix is done, the table is written to a single artifact:
  xlsx   two sheets, "Details" and "Speed Summary" (mean seconds, Model x Language)
  csv    the detail rows
  jsonl  the detail rows, one JSON object per line
The artifact is regenerated on every run. An interrupted run (Ctrl+C)
writes nothing and leaves the previous artifact in place.`,
	Example: `  # Run with defaults (writes ./ket_qua_benchmark.xlsx)
  codefix-bench run

  # Benchmark two models on the classic suite
  codefix-bench run --models qwen2.5-coder:1.5b,llama3.2:1b --suite classic

  # Use the structured review prompt and write CSV
  codefix-bench run --style review --output-file results.csv

  # Point at another Ollama server and output directory
  codefix-bench run --url http://gpu-box:11434 -o ./benchmarks`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// 2. Overrides
		if outputDirOverride != "" {
			cfg.OutputDir = outputDirOverride
		}
		if outputFileOverride != "" {
			cfg.OutputFile = outputFileOverride
		}
		if formatOverride != "" {
			cfg.Format = formatOverride
		}
		if cmd.Flags().Changed("cooldown") {
			cfg.Cooldown = cooldownOverride
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		cases, err := loadCases(cfg)
		if err != nil {
			return err
		}

		// 3. Execution
		out := cmd.OutOrStdout()
		tty := out == os.Stdout && output.IsTerminal(os.Stdout)
		progress := output.NewConsoleProgress(out, tty).Live(tty)
		runner := engine.NewRunner(engine.New(cfg), cfg.PromptStyle(),
			engine.WithObserver(progress),
			engine.WithCooldown(cfg.Cooldown),
		)
		table := runner.Run(cmd.Context(), cases, cfg.Models)
		if err := cmd.Context().Err(); err != nil {
			return fmt.Errorf("benchmark interrupted, nothing written: %w", err)
		}

		// 4. Export
		path := cfg.OutputPath()
		if err := output.WriteArtifact(cfg.ArtifactFormat(), path, table); err != nil {
			return err
		}

		fmt.Fprintln(out, "\nMean latency per model (fastest first):")
		for _, m := range model.MeanByModel(table) {
			fmt.Fprintf(out, "  %-24s %6.2fs\n", m.Model, m.Seconds)
		}
		fmt.Fprintf(out, "\nResults saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&outputDirOverride, "output-dir", "o", "", "Output directory for the results file")
	runCmd.Flags().StringVar(&outputFileOverride, "output-file", "", "Results file name (extension picks the format when --format is empty)")
	runCmd.Flags().StringVar(&formatOverride, "format", "", "Artifact format: xlsx, csv or jsonl")
	runCmd.Flags().DurationVar(&cooldownOverride, "cooldown", 0, "Pause between calls (e.g. 500ms)")
}
