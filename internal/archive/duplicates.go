package archive

import (
	"strings"

	"github.com/HelloDave666/mcp-workspace/internal/models"
)

// duplicateMarker is the literal substring users put into summaries to
// flag a conversation as a known duplicate. It is matched
// case-insensitively and is deliberately implementation-specific; tests
// target this exact behavior, so do not strengthen or weaken the rule.
const duplicateMarker = "doublon"

// DetectDuplicates groups conversations judged duplicates of each other.
// Two conversations match when, in order, short-circuiting on the first
// rule that applies:
//
//  1. either summary contains the marker text and both were created on the
//     same calendar day; or
//  2. both contents are longer than 100 characters, their lengths differ
//     by less than 10% of the first conversation's length, and either the
//     marker appears in one of the summaries or the summaries are
//     byte-identical.
//
// Matching pairs fold into connected groups: the first conversation
// encountered anchors its group, later members are added once and never
// re-evaluated as anchors. Every returned group has at least two members.
func (s *Store) DetectDuplicates() []models.DuplicateGroup {
	var groups []models.DuplicateGroup
	checked := make(map[string]bool, len(s.doc.Conversations))

	conversations := s.doc.Conversations
	for i, anchor := range conversations {
		if checked[anchor.ID] {
			continue
		}
		checked[anchor.ID] = true

		group := models.DuplicateGroup{Conversations: []*models.Conversation{anchor}}
		for _, other := range conversations[i+1:] {
			if checked[other.ID] {
				continue
			}
			if isDuplicatePair(anchor, other) {
				group.Conversations = append(group.Conversations, other)
				checked[other.ID] = true
			}
		}

		if len(group.Conversations) >= 2 {
			groups = append(groups, group)
		}
	}

	return groups
}

// RemovableDuplicates flattens the non-anchor members of every group.
func (s *Store) RemovableDuplicates() []*models.Conversation {
	var removable []*models.Conversation
	for _, g := range s.DetectDuplicates() {
		removable = append(removable, g.Removable()...)
	}
	return removable
}

// CleanupDuplicates deletes every removable duplicate and reports what was
// removed.
func (s *Store) CleanupDuplicates() (*models.CleanupReport, error) {
	groups := s.DetectDuplicates()
	report := &models.CleanupReport{Groups: len(groups)}

	for _, g := range groups {
		for _, c := range g.Removable() {
			if _, err := s.deleteConversationByID(c.ID); err != nil {
				return nil, err
			}
			report.Removed++
			report.RemovedTitles = append(report.RemovedTitles, c.Summary)
		}
	}

	if report.Removed > 0 {
		if err := s.flush(); err != nil {
			return nil, err
		}
	}

	s.log.Info().Int("groups", report.Groups).Int("removed", report.Removed).
		Msg("duplicate cleanup finished")
	return report, nil
}

func isDuplicatePair(a, b *models.Conversation) bool {
	marker := hasMarker(a.Summary) || hasMarker(b.Summary)

	// Rule 1: marker plus same calendar day.
	if marker && sameDay(a, b) {
		return true
	}

	// Rule 2: near-equal substantial content plus marker or identical summary.
	la, lb := len(a.Content), len(b.Content)
	if la > 100 && lb > 100 {
		diff := la - lb
		if diff < 0 {
			diff = -diff
		}
		if float64(diff) < 0.10*float64(la) && (marker || a.Summary == b.Summary) {
			return true
		}
	}

	return false
}

func hasMarker(summary string) bool {
	return strings.Contains(strings.ToLower(summary), duplicateMarker)
}

func sameDay(a, b *models.Conversation) bool {
	ya, ma, da := a.Timestamp.Date()
	yb, mb, db := b.Timestamp.Date()
	return ya == yb && ma == mb && da == db
}
