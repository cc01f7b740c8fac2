package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/HelloDave666/mcp-workspace/internal/archerr"
)

// backupTimestampLayout sorts lexicographically in chronological order,
// which is what the retention prune relies on.
const backupTimestampLayout = "20060102-150405"

func (f *FileStore) backupRoot() string {
	return filepath.Join(f.opts.Dir, "backups")
}

// CreateBackup copies the current main and mapping documents into a new
// timestamped subdirectory, then prunes backups beyond the retention count,
// oldest first. Returns the backup directory path. Creating a backup when
// no document exists yet is a no-op and returns an empty path.
func (f *FileStore) CreateBackup() (string, error) {
	if _, err := os.Stat(f.DocumentPath()); os.IsNotExist(err) {
		return "", nil
	}

	stamp := time.Now().Format(backupTimestampLayout)
	dir := filepath.Join(f.backupRoot(), stamp)

	// Two backups within the same second collapse into one directory;
	// suffix until the name is free.
	for i := 1; ; i++ {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		}
		dir = filepath.Join(f.backupRoot(), fmt.Sprintf("%s-%d", stamp, i))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", archerr.PersistenceFailure(err, "failed to create backup directory")
	}

	if err := copyFile(f.DocumentPath(), filepath.Join(dir, f.opts.DocumentName)); err != nil {
		return "", archerr.PersistenceFailure(err, "failed to back up archive document")
	}
	if _, err := os.Stat(f.MappingPath()); err == nil {
		if err := copyFile(f.MappingPath(), filepath.Join(dir, f.opts.MappingName)); err != nil {
			return "", archerr.PersistenceFailure(err, "failed to back up mapping document")
		}
	}

	if err := f.pruneBackups(); err != nil {
		f.log.Warn().Err(err).Msg("backup prune failed")
	}

	f.log.Debug().Str("dir", dir).Msg("backup created")
	return dir, nil
}

// ListBackups returns the backup subdirectory names, oldest first.
func (f *FileStore) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(f.backupRoot())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, archerr.PersistenceFailure(err, "failed to list backups")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// pruneBackups removes the oldest backups beyond the retention count.
func (f *FileStore) pruneBackups() error {
	names, err := f.ListBackups()
	if err != nil {
		return err
	}

	excess := len(names) - f.opts.BackupRetention
	for i := 0; i < excess; i++ {
		if err := os.RemoveAll(filepath.Join(f.backupRoot(), names[i])); err != nil {
			return fmt.Errorf("failed to prune backup %s: %w", names[i], err)
		}
	}
	return nil
}

// ExportBackup copies the current documents into destDir (created if
// needed), for the dashboard's export action.
func (f *FileStore) ExportBackup(destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return archerr.PersistenceFailure(err, "failed to create export directory")
	}
	if err := copyFile(f.DocumentPath(), filepath.Join(destDir, f.opts.DocumentName)); err != nil {
		return archerr.PersistenceFailure(err, "failed to export archive document")
	}
	if _, err := os.Stat(f.MappingPath()); err == nil {
		if err := copyFile(f.MappingPath(), filepath.Join(destDir, f.opts.MappingName)); err != nil {
			return archerr.PersistenceFailure(err, "failed to export mapping document")
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
