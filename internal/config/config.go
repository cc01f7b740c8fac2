// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all workspace configuration. Every field has a sensible
// default so the binary runs with no environment at all.
type Config struct {
	// Storage
	StorageDir      string `envconfig:"WORKSPACE_STORAGE_DIR"`
	DocumentName    string `envconfig:"WORKSPACE_DOCUMENT_NAME" default:"archive.json"`
	MappingName     string `envconfig:"WORKSPACE_MAPPING_NAME" default:"id-mapping.json"`
	BackupRetention int    `envconfig:"WORKSPACE_BACKUP_RETENTION" default:"10"`

	// Comma-separated historical storage locations scanned by migration.
	// Relative entries are resolved against the home directory.
	LegacyLocations string `envconfig:"WORKSPACE_LEGACY_LOCATIONS" default:".claude-workspace,Documents/MCP-Workspace"`

	// Dashboard HTTP API
	DashboardAddr string `envconfig:"WORKSPACE_DASHBOARD_ADDR" default:"127.0.0.1:8787"`

	// Logging
	LogLevel string `envconfig:"WORKSPACE_LOG_LEVEL" default:"info"`
}

// Load reads configuration from environment variables and resolves the
// storage directory (default ~/.mcp-workspace).
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cfg.StorageDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.StorageDir = filepath.Join(home, ".mcp-workspace")
	}

	return &cfg, nil
}

// DocumentPath returns the absolute path of the main archive document.
func (c *Config) DocumentPath() string {
	return filepath.Join(c.StorageDir, c.DocumentName)
}

// MappingPath returns the absolute path of the legacy-id mapping document.
func (c *Config) MappingPath() string {
	return filepath.Join(c.StorageDir, c.MappingName)
}

// BackupDir returns the directory that holds timestamped backup subdirectories.
func (c *Config) BackupDir() string {
	return filepath.Join(c.StorageDir, "backups")
}

// LegacyLocationList resolves the configured legacy locations to absolute
// paths. Entries that are already absolute are kept as-is.
func (c *Config) LegacyLocationList() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	parts := strings.Split(c.LegacyLocations, ",")
	locations := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(home, p)
		}
		locations = append(locations, p)
	}
	return locations
}
