package archive

import (
	"math"
	"strings"
	"time"

	"github.com/HelloDave666/mcp-workspace/internal/archerr"
	"github.com/HelloDave666/mcp-workspace/internal/models"
	"github.com/HelloDave666/mcp-workspace/internal/textproc"
)

// ImportResult is the outcome of an import: the stored conversation plus,
// when summarized, the percentage reduction achieved.
type ImportResult struct {
	Conversation *models.Conversation
	ReductionPct int
	Summarized   bool
}

// ImportConversation archives conversation text under the current project.
// An empty phase is auto-detected from the text. With archiveType
// "summary" the content is replaced by the deterministic summarizer output
// and the original character count is recorded.
func (s *Store) ImportConversation(text, summary, phase, archiveType string) (*ImportResult, error) {
	if s.doc.CurrentProject == nil {
		return nil, archerr.NoCurrentProject()
	}
	if text == "" {
		return nil, archerr.InvalidArguments("conversation text is required")
	}

	if archiveType == "" {
		archiveType = models.ArchiveTypeFull
	}
	switch archiveType {
	case models.ArchiveTypeFull, models.ArchiveTypeSummary:
	default:
		return nil, archerr.InvalidArguments("archive_type must be %q or %q, got %q",
			models.ArchiveTypeFull, models.ArchiveTypeSummary, archiveType)
	}

	if phase == "" {
		phase = textproc.DetectPhase(text)
	}

	c := &models.Conversation{
		ID:             NewID(),
		ProjectID:      s.doc.CurrentProject.ID,
		Summary:        textproc.Sanitize(summary),
		Phase:          phase,
		Content:        text,
		Timestamp:      time.Now(),
		IsArchived:     true,
		ArchiveType:    archiveType,
		OriginalLength: len(text),
	}

	result := &ImportResult{Conversation: c}
	if archiveType == models.ArchiveTypeSummary {
		c.Content = textproc.Summarize(text, textproc.DefaultReduction)
		result.Summarized = true
		result.ReductionPct = int(math.Round((1 - float64(len(c.Content))/float64(c.OriginalLength)) * 100))
	}

	s.doc.Conversations = append(s.doc.Conversations, c)

	if err := s.flush(); err != nil {
		return nil, err
	}

	s.log.Info().Str("conversation_id", c.ID).Str("project_id", c.ProjectID).
		Str("archive_type", c.ArchiveType).Str("phase", c.Phase).
		Msg("conversation imported")
	return result, nil
}

// SearchConversations returns conversations whose content or summary
// contains the query, case-insensitively, in insertion order. A non-empty
// projectID restricts the search to that project.
func (s *Store) SearchConversations(query, projectID string) ([]models.SearchResult, error) {
	query = strings.ToLower(textproc.Sanitize(query))
	if query == "" {
		return nil, archerr.InvalidArguments("search query is required")
	}
	if projectID != "" && s.findProject(projectID) == nil {
		return nil, archerr.NotFound("project %q does not exist", projectID)
	}

	names := make(map[string]string, len(s.doc.Projects))
	for _, p := range s.doc.Projects {
		names[p.ID] = p.Name
	}

	var results []models.SearchResult
	for _, c := range s.doc.Conversations {
		if projectID != "" && c.ProjectID != projectID {
			continue
		}
		content := strings.ToLower(textproc.Sanitize(c.Content))
		summary := strings.ToLower(textproc.Sanitize(c.Summary))
		if strings.Contains(content, query) || strings.Contains(summary, query) {
			results = append(results, models.SearchResult{
				Conversation: c,
				ProjectName:  names[c.ProjectID],
			})
		}
	}

	return results, nil
}

// ResolveConversationID returns the current id for a conversation given
// its current id, its pre-regeneration originalId, or a legacy id recorded
// in the mapping document. Ids may have been regenerated, so every
// operation that accepts a possibly-stale identifier resolves through here.
func (s *Store) ResolveConversationID(input string) (string, error) {
	for _, c := range s.doc.Conversations {
		if c.ID == input {
			return c.ID, nil
		}
	}
	for _, c := range s.doc.Conversations {
		if c.OriginalID != "" && c.OriginalID == input {
			return c.ID, nil
		}
	}
	if entry, ok := s.mapping.Mapping[input]; ok {
		for _, c := range s.doc.Conversations {
			if c.ID == entry.NewID {
				return c.ID, nil
			}
		}
	}
	return "", archerr.NotFound("conversation %q does not exist", input)
}

// DeleteConversation removes a conversation, accepting stale identifiers.
func (s *Store) DeleteConversation(idOrLegacyID string) (*models.Conversation, error) {
	id, err := s.ResolveConversationID(idOrLegacyID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.deleteConversationByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.flush(); err != nil {
		return nil, err
	}
	return deleted, nil
}

// deleteConversationByID removes a conversation from the collection and
// drops its legacy-mapping entries. The caller flushes.
func (s *Store) deleteConversationByID(id string) (*models.Conversation, error) {
	var deleted *models.Conversation
	kept := s.doc.Conversations[:0]
	for _, c := range s.doc.Conversations {
		if c.ID == id {
			deleted = c
			continue
		}
		kept = append(kept, c)
	}
	if deleted == nil {
		return nil, archerr.NotFound("conversation %q does not exist", id)
	}
	s.doc.Conversations = kept
	s.dropMappingFor(deleted)
	return deleted, nil
}

// dropMappingFor removes every legacy-mapping entry targeting the given
// conversation. Mapping entries are removed only when their target dies.
func (s *Store) dropMappingFor(c *models.Conversation) {
	for key, entry := range s.mapping.Mapping {
		if entry.NewID == c.ID {
			delete(s.mapping.Mapping, key)
		}
	}
}

// RegenerateAllIDs assigns a fresh id to every conversation, recording the
// previous id as originalId (first regeneration only) and adding a legacy
// mapping entry old→new. Mapping entries that pointed at the replaced id
// are re-targeted, so identifiers from any earlier generation keep
// resolving. Used to repair ids that were truncated or corrupted upstream.
func (s *Store) RegenerateAllIDs() (int, error) {
	for _, c := range s.doc.Conversations {
		oldID := c.ID
		c.ID = NewID()
		if c.OriginalID == "" {
			c.OriginalID = oldID
		}

		for key, entry := range s.mapping.Mapping {
			if entry.NewID == oldID {
				entry.NewID = c.ID
				s.mapping.Mapping[key] = entry
			}
		}

		s.mapping.Mapping[oldID] = models.LegacyEntry{
			NewID:     c.ID,
			ProjectID: c.ProjectID,
			Title:     c.Summary,
			Date:      c.Timestamp,
			Phase:     c.Phase,
		}
	}

	if err := s.flush(); err != nil {
		return 0, err
	}

	s.log.Info().Int("conversations", len(s.doc.Conversations)).Msg("all conversation ids regenerated")
	return len(s.doc.Conversations), nil
}
