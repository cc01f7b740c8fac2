package archive

import (
	"fmt"

	"github.com/HelloDave666/mcp-workspace/internal/models"
)

// AnalyzeIntegrity returns aggregate counts plus recommended follow-up
// operations based on simple thresholds. It never mutates the store.
func (s *Store) AnalyzeIntegrity() *models.IntegrityReport {
	report := &models.IntegrityReport{
		Projects:      len(s.doc.Projects),
		Conversations: len(s.doc.Conversations),
	}

	for _, c := range s.doc.Conversations {
		switch {
		case c.IsArchived && c.ArchiveType == models.ArchiveTypeSummary:
			report.ArchivedSummary++
		case c.IsArchived && c.ArchiveType == models.ArchiveTypeFull:
			report.ArchivedFull++
		default:
			report.NotArchived++
		}
	}

	if report.Conversations > 0 {
		summarizedRatio := float64(report.ArchivedSummary) / float64(report.Conversations)
		if summarizedRatio < 0.30 {
			report.Recommendations = append(report.Recommendations,
				"few conversations are summarized; consider importing with archive_type=summary to save space")
		}
	}

	if groups := s.DetectDuplicates(); len(groups) > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("%d duplicate group(s) detected; run cleanup_duplicates to remove them", len(groups)))
	}

	if report.NotArchived > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("%d conversation(s) are not archived; re-import them to record an archive type", report.NotArchived))
	}

	if report.Projects == 0 && report.Conversations == 0 {
		report.Recommendations = append(report.Recommendations,
			"archive is empty; run migrate_legacy_data if an older installation exists")
	}

	return report
}
