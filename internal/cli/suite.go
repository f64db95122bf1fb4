package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/daryltucker/codefix-bench/internal/assets"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/suite"
)

var (
	showCode    bool
	forceExport bool
)

var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "Inspect and export the test suites",
}

var suiteListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the test cases of the selected suite",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cases, err := loadCases(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if cfg.SuiteFile == "" {
			names, err := suite.Names()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Built-in suites: %v (showing %s)\n", names, cfg.Suite)
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "Language", "Defect Type", "Problem Name")
		for _, tc := range cases {
			t.Row(tc.ID, tc.Language, tc.DefectType, tc.Name)
		}
		fmt.Fprintln(out, t.String())

		if showCode {
			for _, tc := range cases {
				fmt.Fprintf(out, "\n--- %s [%s] %s\n%s\n", tc.ID, tc.Language, tc.Name, tc.Code)
			}
		}
		return nil
	},
}

var suiteExportCmd = &cobra.Command{
	Use:   "export [PATH]",
	Short: "Write the built-in fixture file so it can be edited and used with --suite-file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := assets.SuitesFileName
		if len(args) == 1 {
			target = args[0]
		}

		if _, err := os.Stat(target); err == nil && !forceExport {
			return fmt.Errorf("%s already exists (use --force to overwrite)", target)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", target, err)
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create target directory for %s: %w", target, err)
		}
		if err := os.WriteFile(target, assets.Suites, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}

		output.Logger.Info("Exported fixture suites", "path", target)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
		return nil
	},
}

func init() {
	suiteListCmd.Flags().BoolVar(&showCode, "code", false, "Also print the code of every case")
	suiteExportCmd.Flags().BoolVar(&forceExport, "force", false, "Overwrite an existing file")

	suiteCmd.AddCommand(suiteListCmd)
	suiteCmd.AddCommand(suiteExportCmd)
	rootCmd.AddCommand(suiteCmd)
}
