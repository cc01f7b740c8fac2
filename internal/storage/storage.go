// Package storage persists the archive as a single JSON document on disk,
// plus a sibling legacy-id mapping document, timestamped rotating backups
// and legacy-location migration. Every save is a whole-document rewrite.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/archerr"
	"github.com/HelloDave666/mcp-workspace/internal/models"
)

// Options configures a FileStore.
type Options struct {
	Dir             string
	DocumentName    string
	MappingName     string
	BackupRetention int
	LegacyLocations []string
}

// DefaultOptions returns options for a storage directory with the standard
// document names and retention.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:             dir,
		DocumentName:    "archive.json",
		MappingName:     "id-mapping.json",
		BackupRetention: 10,
	}
}

// LoadStatus describes how the in-memory state was obtained.
type LoadStatus int

const (
	// LoadOK means the document was read and parsed cleanly.
	LoadOK LoadStatus = iota
	// LoadFresh means no document existed; the store starts empty.
	LoadFresh
	// LoadFallback means the document existed but could not be read or
	// parsed; the store starts empty by policy. Callers should surface
	// this to the user — "no data" here does not mean "new installation".
	LoadFallback
)

// LoadReport is returned by Load alongside the documents.
type LoadReport struct {
	Status LoadStatus
	// Err holds the read/parse failure when Status is LoadFallback.
	Err error
}

// FileStore maps the archive snapshot to/from disk. It holds no long-lived
// references to entities; it only serializes what it is handed.
type FileStore struct {
	opts Options
	log  zerolog.Logger

	mu       sync.Mutex
	lastSave time.Time
}

// NewFileStore creates a FileStore. The storage directory is created lazily
// by Load/Save.
func NewFileStore(opts Options, logger zerolog.Logger) *FileStore {
	if opts.DocumentName == "" {
		opts.DocumentName = "archive.json"
	}
	if opts.MappingName == "" {
		opts.MappingName = "id-mapping.json"
	}
	if opts.BackupRetention <= 0 {
		opts.BackupRetention = 10
	}
	return &FileStore{
		opts: opts,
		log:  logger.With().Str("component", "storage").Logger(),
	}
}

// DocumentPath returns the path of the main archive document.
func (f *FileStore) DocumentPath() string {
	return filepath.Join(f.opts.Dir, f.opts.DocumentName)
}

// MappingPath returns the path of the legacy-id mapping document.
func (f *FileStore) MappingPath() string {
	return filepath.Join(f.opts.Dir, f.opts.MappingName)
}

// Dir returns the storage directory.
func (f *FileStore) Dir() string { return f.opts.Dir }

// ensureDirs creates the storage directory tree, including the backup root.
func (f *FileStore) ensureDirs() error {
	for _, dir := range []string{f.opts.Dir, f.backupRoot()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads the main document and the mapping document. A read or parse
// failure falls back to empty collections instead of propagating: losing
// access to history is preferred over refusing to start. The report tells
// the caller which case occurred. When a prior document exists, a safety
// backup is taken before it is read, so a later corrupt save cannot erase
// the last good copy.
func (f *FileStore) Load() (*models.Document, *models.MappingDocument, LoadReport, error) {
	if err := f.ensureDirs(); err != nil {
		return nil, nil, LoadReport{}, archerr.PersistenceFailure(err, "cannot prepare storage directory")
	}

	if _, err := os.Stat(f.DocumentPath()); err == nil {
		if _, err := f.CreateBackup(); err != nil {
			f.log.Warn().Err(err).Msg("pre-load backup failed")
		}
	}

	doc := models.EmptyDocument()
	report := LoadReport{Status: LoadFresh}

	data, err := os.ReadFile(f.DocumentPath())
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(data, doc); jsonErr != nil {
			f.log.Warn().Err(jsonErr).Str("path", f.DocumentPath()).
				Msg("archive document unreadable, starting empty")
			doc = models.EmptyDocument()
			report = LoadReport{Status: LoadFallback, Err: jsonErr}
		} else {
			report = LoadReport{Status: LoadOK}
		}
	case os.IsNotExist(err):
		// fresh install
	default:
		f.log.Warn().Err(err).Str("path", f.DocumentPath()).
			Msg("archive document unreadable, starting empty")
		report = LoadReport{Status: LoadFallback, Err: err}
	}

	normalizeDocument(doc)

	mapping := models.EmptyMappingDocument()
	if data, err := os.ReadFile(f.MappingPath()); err == nil {
		if jsonErr := json.Unmarshal(data, mapping); jsonErr != nil {
			f.log.Warn().Err(jsonErr).Msg("mapping document unreadable, starting empty")
			mapping = models.EmptyMappingDocument()
		}
	}
	if mapping.Mapping == nil {
		mapping.Mapping = map[string]models.LegacyEntry{}
	}

	return doc, mapping, report, nil
}

// Save overwrites the main document with the given snapshot. The write is
// staged through a temp file and renamed into place so a crash mid-write
// cannot leave a truncated document.
func (f *FileStore) Save(doc *models.Document) error {
	if err := f.ensureDirs(); err != nil {
		return archerr.PersistenceFailure(err, "cannot prepare storage directory")
	}

	doc.LastUpdated = time.Now()
	doc.Version = models.SchemaVersion

	if err := writeJSON(f.DocumentPath(), doc); err != nil {
		return archerr.PersistenceFailure(err, "failed to save archive document")
	}
	f.markSave()
	return nil
}

// SaveMapping overwrites the legacy-id mapping document.
func (f *FileStore) SaveMapping(m *models.MappingDocument) error {
	if err := f.ensureDirs(); err != nil {
		return archerr.PersistenceFailure(err, "cannot prepare storage directory")
	}

	m.LastUpdated = time.Now()

	if err := writeJSON(f.MappingPath(), m); err != nil {
		return archerr.PersistenceFailure(err, "failed to save mapping document")
	}
	f.markSave()
	return nil
}

func (f *FileStore) markSave() {
	f.mu.Lock()
	f.lastSave = time.Now()
	f.mu.Unlock()
}

// LastSaveAt returns when this process last wrote either document. The
// watcher uses it to tell our own writes from external edits.
func (f *FileStore) LastSaveAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSave
}

// Health describes the state of the storage directory.
type Health struct {
	Dir          string    `json:"dir"`
	DocumentPath string    `json:"document_path"`
	DocumentSize int64     `json:"document_size"`
	Exists       bool      `json:"exists"`
	LastUpdated  time.Time `json:"last_updated"`
	Backups      int       `json:"backups"`
}

// CheckHealth inspects the storage directory without mutating anything.
func (f *FileStore) CheckHealth() (*Health, error) {
	h := &Health{Dir: f.opts.Dir, DocumentPath: f.DocumentPath()}

	if stat, err := os.Stat(f.DocumentPath()); err == nil {
		h.Exists = true
		h.DocumentSize = stat.Size()
		h.LastUpdated = stat.ModTime()
	}

	backups, err := f.ListBackups()
	if err != nil {
		return nil, err
	}
	h.Backups = len(backups)

	return h, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

// normalizeDocument replaces nil collections from older or hand-edited
// documents with empty ones, and re-points the current-project pointer at
// the loaded instance so identity comparisons hold.
func normalizeDocument(doc *models.Document) {
	if doc.Projects == nil {
		doc.Projects = []*models.Project{}
	}
	if doc.Conversations == nil {
		doc.Conversations = []*models.Conversation{}
	}
	if doc.Notes == nil {
		doc.Notes = []*models.Note{}
	}
	if doc.Decisions == nil {
		doc.Decisions = []*models.TechnicalDecision{}
	}
	if doc.Documentation == nil {
		doc.Documentation = []*models.Documentation{}
	}

	if doc.CurrentProject != nil {
		resolved := false
		for _, p := range doc.Projects {
			if p.ID == doc.CurrentProject.ID {
				doc.CurrentProject = p
				resolved = true
				break
			}
		}
		if !resolved {
			doc.CurrentProject = nil
		}
	}
}
