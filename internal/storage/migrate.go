package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/HelloDave666/mcp-workspace/internal/models"
)

// LegacySource is one historical storage location found on disk, with
// whatever documents it held.
type LegacySource struct {
	Location string
	Document *models.Document
	Mapping  map[string]models.LegacyEntry
}

// LoadLegacy scans the configured legacy storage locations and loads the
// documents found there. Locations that are missing or unreadable are
// skipped; migration is best-effort by design. The merge itself happens in
// the archive store, which owns the live collections.
func (f *FileStore) LoadLegacy() []LegacySource {
	var sources []LegacySource

	for _, loc := range f.opts.LegacyLocations {
		docPath := filepath.Join(loc, f.opts.DocumentName)
		data, err := os.ReadFile(docPath)
		if err != nil {
			continue
		}

		doc := models.EmptyDocument()
		if err := json.Unmarshal(data, doc); err != nil {
			f.log.Warn().Err(err).Str("path", docPath).Msg("legacy document unreadable, skipping")
			continue
		}
		normalizeDocument(doc)

		src := LegacySource{Location: loc, Document: doc}

		mapPath := filepath.Join(loc, f.opts.MappingName)
		if data, err := os.ReadFile(mapPath); err == nil {
			mapping := models.EmptyMappingDocument()
			if err := json.Unmarshal(data, mapping); err == nil && mapping.Mapping != nil {
				src.Mapping = mapping.Mapping
			}
		}

		f.log.Info().Str("location", loc).
			Int("projects", len(doc.Projects)).
			Int("conversations", len(doc.Conversations)).
			Msg("legacy storage location found")
		sources = append(sources, src)
	}

	return sources
}
