package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/daryltucker/codefix-bench/internal/engine"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/session"
)

var reviewJSON bool

var reviewCmd = &cobra.Command{
	Use:   "review FILE",
	Short: "Review one code file with every model",
	Long: `Sends FILE to every configured model with the structured review prompt
(summary, list of defects, suggested fix) and prints each answer with its
latency. Use "-" to read the code from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		in := engine.ReviewInput{Source: session.SourceFile, FileName: filepath.Base(args[0])}
		var data []byte
		if args[0] == "-" {
			in.Source = session.SourceTyped
			in.FileName = ""
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return fmt.Errorf("%s: content is required", args[0])
		}
		in.Content = string(data)

		reviewer := engine.NewReviewer(engine.New(cfg), cfg.Models, cfg.ReviewCooldown)
		turn := reviewer.Review(cmd.Context(), session.NewLog(), in)

		out := cmd.OutOrStdout()
		if reviewJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(turn)
		}

		enable := out == os.Stdout && output.IsTerminal(os.Stdout)
		header := color.New(color.Bold, color.FgCyan)
		failed := color.New(color.FgRed)
		if !enable {
			header.DisableColor()
			failed.DisableColor()
		}
		for _, o := range turn.Outputs {
			if o.Failed {
				fmt.Fprintf(out, "%s\n%s\n\n", header.Sprintf("=== %s", o.Model), failed.Sprint(o.Text))
				continue
			}
			fmt.Fprintf(out, "%s\n%s\n\n", header.Sprintf("=== %s (%.2fs)", o.Model, o.Seconds), o.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "Print the review turn as JSON")
}
