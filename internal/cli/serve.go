package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/codefix-bench/internal/dashboard"
	"github.com/daryltucker/codefix-bench/internal/engine"
)

var listenOverride string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Serves a dashboard with the test suite, a button that starts the benchmark,
a live result table with progress and a mean latency chart, and a code review
chat where pasted or uploaded code is reviewed by every model.

Only one benchmark runs at a time. Stop the server with Ctrl+C.`,
	Example: `  codefix-bench serve
  codefix-bench serve --listen 0.0.0.0:8501 --suite classic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if listenOverride != "" {
			cfg.Listen = listenOverride
		}

		cases, err := loadCases(cfg)
		if err != nil {
			return err
		}

		e := engine.New(cfg)
		srv, err := dashboard.NewServer(cfg, e, e, cases)
		if err != nil {
			return err
		}
		return srv.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenOverride, "listen", "", "Address to listen on (default 127.0.0.1:8501)")
}
