package config

import (
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DocumentName != "archive.json" || cfg.MappingName != "id-mapping.json" {
		t.Errorf("document names = %q, %q", cfg.DocumentName, cfg.MappingName)
	}
	if cfg.BackupRetention != 10 {
		t.Errorf("retention = %d, want 10", cfg.BackupRetention)
	}
	if cfg.StorageDir == "" {
		t.Error("storage dir not resolved")
	}
	if filepath.Base(cfg.StorageDir) != ".mcp-workspace" {
		t.Errorf("storage dir = %q", cfg.StorageDir)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("WORKSPACE_STORAGE_DIR", "/tmp/ws")
	t.Setenv("WORKSPACE_BACKUP_RETENTION", "3")
	t.Setenv("WORKSPACE_LEGACY_LOCATIONS", "/abs/one, rel/two")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.StorageDir != "/tmp/ws" || cfg.BackupRetention != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DocumentPath() != "/tmp/ws/archive.json" {
		t.Errorf("document path = %q", cfg.DocumentPath())
	}
	if cfg.BackupDir() != "/tmp/ws/backups" {
		t.Errorf("backup dir = %q", cfg.BackupDir())
	}

	locations := cfg.LegacyLocationList()
	if len(locations) != 2 {
		t.Fatalf("locations = %v", locations)
	}
	if locations[0] != "/abs/one" {
		t.Errorf("absolute location rewritten: %q", locations[0])
	}
	if filepath.Base(locations[1]) != "two" || !filepath.IsAbs(locations[1]) {
		t.Errorf("relative location not resolved against home: %q", locations[1])
	}
}
