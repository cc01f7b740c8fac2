package cli

import (
	"github.com/spf13/cobra"

	"github.com/HelloDave666/mcp-workspace/internal/tui"
)

func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the archive in a TUI",
		Long:  `Open an interactive terminal UI to browse archived conversations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			return tui.NewBrowser(a.store).Run()
		},
	}
}
