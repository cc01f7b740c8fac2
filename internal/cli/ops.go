package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// runOperation executes one catalogue operation and prints its reply, so
// CLI output matches what an MCP client would see.
func runOperation(op string, args map[string]interface{}) error {
	a, err := setup()
	if err != nil {
		return err
	}

	reply := a.router.Handle(op, args)
	for _, b := range reply.Blocks {
		fmt.Println(b.Text)
	}
	if reply.IsError {
		return fmt.Errorf("operation %s failed", op)
	}
	return nil
}

func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage workspace projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("list_projects", nil)
		},
	})

	return cmd
}

func NewSearchCommand() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search archived conversations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opArgs := map[string]interface{}{"query": args[0]}
			if projectID != "" {
				opArgs["project_id"] = projectID
			}
			return runOperation("search_conversation_history", opArgs)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Restrict the search to one project id")

	return cmd
}

func NewBackupCommand() *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a timestamped backup of the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportDir != "" {
				a, err := setup()
				if err != nil {
					return err
				}
				if err := a.files.ExportBackup(exportDir); err != nil {
					return err
				}
				fmt.Printf("Exported archive to %s.\n", exportDir)
				return nil
			}
			return runOperation("create_manual_backup", nil)
		},
	}

	cmd.Flags().StringVar(&exportDir, "export", "", "Export the documents to a directory instead of the backup root")

	return cmd
}

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Merge data from legacy storage locations",
		Long:  `Scan the configured legacy locations and merge any records not already present. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("migrate_legacy_data", nil)
		},
	}
}

func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report storage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("check_storage_health", nil)
		},
	}
}

func NewIntegrityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "integrity",
		Short: "Analyze archive integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation("analyze_project_integrity", nil)
		},
	}
}
