package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/codefix-bench/internal/engine"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/session"
	"github.com/daryltucker/codefix-bench/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal code review with every model",
	Long: `Opens a terminal chat. Paste code and press ctrl+s, or type
"/file path/to/code.py" and press ctrl+s to review a file. Every model
answers in turn with the structured review. Press esc to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Log lines would tear the alternate screen.
		if !verbose {
			output.Discard()
		}

		reviewer := engine.NewReviewer(engine.New(cfg), cfg.Models, cfg.ReviewCooldown)
		return tui.Run(cmd.Context(), reviewer, session.NewLog())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
