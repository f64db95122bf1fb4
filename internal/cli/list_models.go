/*
PURPOSE:
  Defines the 'list-models' subcommand.
  Helps debug connectivity and shows which configured models are missing.

REQUIREMENTS:
  User-specified:
  - List available models.

  Implementation-discovered:
  - Useful validation step before a full run: a missing model only shows
    up as failed rows otherwise.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Engine.GetModels()

ERROR HANDLING:
  - Returns the connection error if the server cannot be queried.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  codefix-bench list-models --url http://localhost:11434

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/client.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/codefix-bench/internal/engine"
)

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List models installed on the Ollama server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		e := engine.New(cfg)
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Querying %s...\n", cfg.URL)
		models, err := e.GetModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list models on %s: %w", cfg.URL, err)
		}

		installed := make(map[string]bool, len(models))
		for _, m := range models {
			installed[m] = true
			fmt.Fprintf(out, "- %s\n", m)
		}

		var missing []string
		for _, m := range cfg.Models {
			if !installed[m] && !installed[m+":latest"] {
				missing = append(missing, m)
			}
		}
		if len(missing) > 0 {
			fmt.Fprintln(out, "\nConfigured but not installed:")
			for _, m := range missing {
				fmt.Fprintf(out, "- %s (ollama pull %s)\n", m, m)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listModelsCmd)
}
