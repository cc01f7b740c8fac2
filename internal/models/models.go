package models

import (
	"time"
)

// Project statuses and archive types are free-form tags in the persisted
// document; the constants below are the values this process writes.
const (
	StatusActive = "active"

	ArchiveTypeFull    = "full"
	ArchiveTypeSummary = "summary"

	PhaseInitialSetup = "initial-setup"
	PhaseDevelopment  = "development"
	PhaseDebugging    = "debugging"
	PhaseTesting      = "testing"
	PhaseOptimization = "optimization"
	PhaseFinalization = "finalization"
)

// Project is a workspace project. Name uniqueness is case-insensitive and
// enforced at create/rename time only.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Type         string    `json:"type,omitempty"`
	Technologies []string  `json:"technologies,omitempty"`
	Created      time.Time `json:"created"`
	Phase        string    `json:"phase"`
	Status       string    `json:"status"`
}

// Conversation is an archived conversation. Content holds either the full
// original text or the deterministic summary, depending on ArchiveType.
type Conversation struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	Summary        string    `json:"summary"`
	Phase          string    `json:"phase"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	OriginalID     string    `json:"originalId,omitempty"`
	IsArchived     bool      `json:"isArchived"`
	ArchiveType    string    `json:"archiveType"`
	OriginalLength int       `json:"originalLength"`
}

// Note is a standalone note, optionally attached to a project.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ProjectID string    `json:"project_id,omitempty"`
}

// TechnicalDecision records a decision made within a project.
type TechnicalDecision struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Decision  string    `json:"decision"`
	Reasoning string    `json:"reasoning"`
	Impact    string    `json:"impact"`
	Timestamp time.Time `json:"timestamp"`
}

// Documentation is a project documentation entry.
type Documentation struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Technology string    `json:"technology"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Relevance  string    `json:"relevance"`
	Timestamp  time.Time `json:"timestamp"`
}

// LegacyEntry maps a historical conversation id to its current id plus
// denormalized metadata for lookup after the conversation was re-identified.
type LegacyEntry struct {
	NewID     string    `json:"newId"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Phase     string    `json:"phase"`
}

// SearchResult is a conversation match annotated with its project's name.
type SearchResult struct {
	Conversation *Conversation `json:"conversation"`
	ProjectName  string        `json:"project_name"`
}

// DuplicateGroup is a set of conversations judged duplicates of each other.
// The first member anchors the group; the rest are considered removable.
type DuplicateGroup struct {
	Conversations []*Conversation `json:"conversations"`
}

// Removable returns every group member except the anchor.
func (g DuplicateGroup) Removable() []*Conversation {
	if len(g.Conversations) < 2 {
		return nil
	}
	return g.Conversations[1:]
}

// IntegrityReport aggregates archive counts plus follow-up recommendations.
type IntegrityReport struct {
	Projects        int      `json:"projects"`
	Conversations   int      `json:"conversations"`
	ArchivedFull    int      `json:"archived_full"`
	ArchivedSummary int      `json:"archived_summary"`
	NotArchived     int      `json:"not_archived"`
	Recommendations []string `json:"recommendations"`
}

// CascadeReport counts the rows removed by a project deletion.
type CascadeReport struct {
	Conversations int `json:"conversations"`
	Notes         int `json:"notes"`
	Decisions     int `json:"decisions"`
	Documentation int `json:"documentation"`
}

// Total returns the number of dependent rows removed, excluding the project.
func (r CascadeReport) Total() int {
	return r.Conversations + r.Notes + r.Decisions + r.Documentation
}

// MigrationReport describes the outcome of a legacy-data migration pass.
type MigrationReport struct {
	LocationsFound []string `json:"locations_found"`
	Merged         int      `json:"merged"`
	MappingsMerged int      `json:"mappings_merged"`
}

// CleanupReport describes the outcome of a duplicate cleanup pass.
type CleanupReport struct {
	Groups        int      `json:"groups"`
	Removed       int      `json:"removed"`
	RemovedTitles []string `json:"removed_titles"`
}
