package archive

import (
	"github.com/HelloDave666/mcp-workspace/internal/models"
)

// MigrateLegacyData scans the historical storage locations and merges any
// entity whose id is not already present (first writer wins). Legacy-id
// mapping entries merge by overwrite union. Running it again with no new
// legacy data merges nothing: the operation is idempotent.
func (s *Store) MigrateLegacyData() (*models.MigrationReport, error) {
	report := &models.MigrationReport{}

	sources := s.persist.LoadLegacy()
	if len(sources) == 0 {
		return report, nil
	}

	projectIDs := make(map[string]bool, len(s.doc.Projects))
	for _, p := range s.doc.Projects {
		projectIDs[p.ID] = true
	}
	conversationIDs := make(map[string]bool, len(s.doc.Conversations))
	for _, c := range s.doc.Conversations {
		conversationIDs[c.ID] = true
	}
	noteIDs := make(map[string]bool, len(s.doc.Notes))
	for _, n := range s.doc.Notes {
		noteIDs[n.ID] = true
	}
	decisionIDs := make(map[string]bool, len(s.doc.Decisions))
	for _, d := range s.doc.Decisions {
		decisionIDs[d.ID] = true
	}
	docIDs := make(map[string]bool, len(s.doc.Documentation))
	for _, d := range s.doc.Documentation {
		docIDs[d.ID] = true
	}

	for _, src := range sources {
		report.LocationsFound = append(report.LocationsFound, src.Location)

		for _, p := range src.Document.Projects {
			if p.ID == "" || projectIDs[p.ID] {
				continue
			}
			s.doc.Projects = append(s.doc.Projects, p)
			projectIDs[p.ID] = true
			report.Merged++
		}
		for _, c := range src.Document.Conversations {
			if c.ID == "" || conversationIDs[c.ID] {
				continue
			}
			s.doc.Conversations = append(s.doc.Conversations, c)
			conversationIDs[c.ID] = true
			report.Merged++
		}
		for _, n := range src.Document.Notes {
			if n.ID == "" || noteIDs[n.ID] {
				continue
			}
			s.doc.Notes = append(s.doc.Notes, n)
			noteIDs[n.ID] = true
			report.Merged++
		}
		for _, d := range src.Document.Decisions {
			if d.ID == "" || decisionIDs[d.ID] {
				continue
			}
			s.doc.Decisions = append(s.doc.Decisions, d)
			decisionIDs[d.ID] = true
			report.Merged++
		}
		for _, d := range src.Document.Documentation {
			if d.ID == "" || docIDs[d.ID] {
				continue
			}
			s.doc.Documentation = append(s.doc.Documentation, d)
			docIDs[d.ID] = true
			report.Merged++
		}

		for key, entry := range src.Mapping {
			if existing, ok := s.mapping.Mapping[key]; ok && existing == entry {
				continue
			}
			s.mapping.Mapping[key] = entry
			report.MappingsMerged++
		}
	}

	if err := s.flush(); err != nil {
		return nil, err
	}

	s.log.Info().Strs("locations", report.LocationsFound).
		Int("merged", report.Merged).Msg("legacy data migration finished")
	return report, nil
}
