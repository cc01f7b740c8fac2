// Package cli wires configuration, storage, the archive store and the
// router into cobra commands. Commands print to stdout; logs go to stderr
// so the MCP stdio transport keeps stdout to itself.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/HelloDave666/mcp-workspace/internal/archive"
	"github.com/HelloDave666/mcp-workspace/internal/audit"
	"github.com/HelloDave666/mcp-workspace/internal/config"
	"github.com/HelloDave666/mcp-workspace/internal/router"
	"github.com/HelloDave666/mcp-workspace/internal/storage"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mcp-workspace",
		Short: "Project and conversation archive manager",
		Long: `MCP Workspace - Archive projects, conversations, notes and technical
decisions in a single JSON document, served over MCP and a local dashboard API.`,
		Version: "2.0.0",
	}

	rootCmd.AddCommand(
		NewServeCommand(),
		NewDashboardCommand(),
		NewBrowseCommand(),
		NewProjectsCommand(),
		NewSearchCommand(),
		NewBackupCommand(),
		NewMigrateCommand(),
		NewHealthCommand(),
		NewIntegrityCommand(),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the long-lived objects every command needs.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	files  *storage.FileStore
	store  *archive.Store
	router *router.Router
}

// setup loads configuration, builds the logger and loads the archive.
func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	files := storage.NewFileStore(storage.Options{
		Dir:             cfg.StorageDir,
		DocumentName:    cfg.DocumentName,
		MappingName:     cfg.MappingName,
		BackupRetention: cfg.BackupRetention,
		LegacyLocations: cfg.LegacyLocationList(),
	}, log)

	store, err := archive.New(files, log)
	if err != nil {
		return nil, err
	}

	trail, err := audit.Open(cfg.StorageDir)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		files:  files,
		store:  store,
		router: router.New(store, log, router.WithAudit(trail)),
	}, nil
}
