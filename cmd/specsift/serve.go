package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/specsift/specsift/internal/config"
	"github.com/specsift/specsift/internal/home"
	"github.com/specsift/specsift/internal/server"
	"github.com/specsift/specsift/internal/server/endpoints"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the specsift server",
	Long: `Start the specsift HTTP server.

The server provides:
  - /health       - Basic server health check
  - /ready        - Readiness check (includes backend status)
  - /api/triage   - Page triage for uploaded PDFs
  - /api/extract  - Display spec extraction over triaged pages
  - /api/bank     - The active keyword bank

Listen address, upload limits, and backend credentials come from the config
file. The file is watched; backend changes apply without a restart.

Examples:
  specsift serve                          # Use ./config.yaml or ~/.specsift/config.yaml
  specsift serve --config ./my.yaml       # Use an explicit config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load config with hot reload
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		// Create server
		srv, err := server.New(server.Config{
			ConfigManager:   mgr,
			Home:            h,
			Logger:          logger,
			SwaggerSpecPath: endpoints.GetSwaggerSpecPath(),
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
