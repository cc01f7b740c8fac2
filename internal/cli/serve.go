package cli

import (
	"github.com/spf13/cobra"

	"github.com/HelloDave666/mcp-workspace/internal/dashboard"
	"github.com/HelloDave666/mcp-workspace/internal/mcpserver"
	"github.com/HelloDave666/mcp-workspace/internal/watcher"
)

func NewServeCommand() *cobra.Command {
	var withDashboard bool
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace over MCP stdio",
		Long: `Start the MCP server on stdin/stdout. This is the command an MCP client
configuration should point at. Logs go to stderr.`,
		Example: `  # Serve MCP only
  mcp-workspace serve

  # Also run the local dashboard API
  mcp-workspace serve --dashboard`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(withDashboard, !noWatch)
		},
	}

	cmd.Flags().BoolVar(&withDashboard, "dashboard", false, "Also serve the local dashboard HTTP API")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Don't watch the archive document for external edits")

	return cmd
}

func runServe(withDashboard, watch bool) error {
	a, err := setup()
	if err != nil {
		return err
	}

	var w *watcher.Watcher
	if watch {
		w, err = watcher.New(a.files, a.log)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	if withDashboard {
		var edits dashboard.EditDetector
		if w != nil {
			edits = w
		}
		ds := dashboard.NewServer(a.cfg.DashboardAddr, a.store, a.files, edits, a.log)
		go func() {
			if err := ds.Start(); err != nil {
				a.log.Error().Err(err).Msg("dashboard API stopped")
			}
		}()
		defer ds.Shutdown()
	}

	s := mcpserver.New(a.router, a.log)
	a.log.Info().Str("storage", a.cfg.StorageDir).Msg("serving MCP on stdio")
	return mcpserver.ServeStdio(s)
}
