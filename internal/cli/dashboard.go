package cli

import (
	"github.com/spf13/cobra"

	"github.com/HelloDave666/mcp-workspace/internal/dashboard"
	"github.com/HelloDave666/mcp-workspace/internal/watcher"
)

func NewDashboardCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the local dashboard HTTP API",
		Long: `Run only the dashboard API, for the desktop shell or local tooling.
The archive document is watched for external edits while the API runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from WORKSPACE_DASHBOARD_ADDR)")

	return cmd
}

func runDashboard(addr string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	if addr == "" {
		addr = a.cfg.DashboardAddr
	}

	w, err := watcher.New(a.files, a.log)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ds := dashboard.NewServer(addr, a.store, a.files, w, a.log)
	return ds.Start()
}
