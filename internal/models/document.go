package models

import "time"

// SchemaVersion tags the persisted document layout.
const SchemaVersion = "2.0"

// Document is the persisted layout of the whole archive: a single JSON
// file rewritten on every mutation.
type Document struct {
	Projects       []*Project           `json:"projects"`
	CurrentProject *Project             `json:"currentProject"`
	Conversations  []*Conversation      `json:"conversations"`
	Notes          []*Note              `json:"notes"`
	Decisions      []*TechnicalDecision `json:"decisions"`
	Documentation  []*Documentation     `json:"documentation"`
	LastUpdated    time.Time            `json:"lastUpdated"`
	Version        string               `json:"version"`
}

// EmptyDocument returns a document with non-nil collections, ready to persist.
func EmptyDocument() *Document {
	return &Document{
		Projects:      []*Project{},
		Conversations: []*Conversation{},
		Notes:         []*Note{},
		Decisions:     []*TechnicalDecision{},
		Documentation: []*Documentation{},
		Version:       SchemaVersion,
	}
}

// MappingDocument is the sibling file holding the legacy-id mapping.
type MappingDocument struct {
	Mapping            map[string]LegacyEntry `json:"mapping"`
	LastUpdated        time.Time              `json:"lastUpdated"`
	TotalConversations int                    `json:"totalConversations"`
}

// EmptyMappingDocument returns a mapping document with a non-nil map.
func EmptyMappingDocument() *MappingDocument {
	return &MappingDocument{Mapping: map[string]LegacyEntry{}}
}
