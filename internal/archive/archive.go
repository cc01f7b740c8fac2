// Package archive owns the in-memory snapshot of all workspace entities —
// projects, conversations, notes, technical decisions, documentation and
// the legacy-id mapping — plus the current-project pointer. Every mutating
// operation is synchronous and ends with a persistence flush, so a
// successful return implies the change reached disk.
package archive

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/archerr"
	"github.com/HelloDave666/mcp-workspace/internal/models"
	"github.com/HelloDave666/mcp-workspace/internal/storage"
	"github.com/HelloDave666/mcp-workspace/internal/textproc"
)

// Persister is the slice of the persistence layer the store depends on.
// *storage.FileStore satisfies it.
type Persister interface {
	Load() (*models.Document, *models.MappingDocument, storage.LoadReport, error)
	Save(doc *models.Document) error
	SaveMapping(m *models.MappingDocument) error
	CreateBackup() (string, error)
	LoadLegacy() []storage.LegacySource
	CheckHealth() (*storage.Health, error)
}

// Store is the sole owner of all entity instances. It is not safe for
// concurrent use: the router processes one request at a time, which is the
// only access pattern this process has.
type Store struct {
	log     zerolog.Logger
	persist Persister

	doc     *models.Document
	mapping *models.MappingDocument

	loadReport storage.LoadReport
}

// New loads the persisted snapshot and returns a ready store. A read or
// parse failure does not fail construction; the store starts empty and the
// condition is retained for health reporting.
func New(persist Persister, logger zerolog.Logger) (*Store, error) {
	doc, mapping, report, err := persist.Load()
	if err != nil {
		return nil, err
	}

	s := &Store{
		log:        logger.With().Str("component", "archive").Logger(),
		persist:    persist,
		doc:        doc,
		mapping:    mapping,
		loadReport: report,
	}

	if report.Status == storage.LoadFallback {
		s.log.Warn().Err(report.Err).
			Msg("archive started empty after a load failure; existing data was not readable")
	}

	return s, nil
}

// LoadReport returns how the initial snapshot was obtained, so callers can
// distinguish "new installation" from "started empty after read failure".
func (s *Store) LoadReport() storage.LoadReport { return s.loadReport }

// flush persists the whole snapshot. Mutations are not durable until this
// returns nil.
func (s *Store) flush() error {
	if err := s.persist.Save(s.doc); err != nil {
		return err
	}
	s.mapping.TotalConversations = len(s.doc.Conversations)
	return s.persist.SaveMapping(s.mapping)
}

// Projects returns the live project collection in insertion order.
func (s *Store) Projects() []*models.Project { return s.doc.Projects }

// CurrentProject returns the implicitly targeted project, or nil.
func (s *Store) CurrentProject() *models.Project { return s.doc.CurrentProject }

// Conversations returns the live conversation collection in insertion order.
func (s *Store) Conversations() []*models.Conversation { return s.doc.Conversations }

// findProject returns the project with the given id, or nil.
func (s *Store) findProject(id string) *models.Project {
	for _, p := range s.doc.Projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// projectByName returns the project whose name matches case-insensitively.
func (s *Store) projectByName(name string) *models.Project {
	for _, p := range s.doc.Projects {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// CreateProject creates a project, selects it as current and returns it.
// The name must be unique case-insensitively.
func (s *Store) CreateProject(name, description, projectType string, technologies []string) (*models.Project, error) {
	name = textproc.Sanitize(name)
	if name == "" {
		return nil, archerr.InvalidArguments("project name is required")
	}
	if existing := s.projectByName(name); existing != nil {
		return nil, archerr.DuplicateName("a project named %q already exists", existing.Name)
	}

	p := &models.Project{
		ID:           NewID(),
		Name:         name,
		Description:  textproc.Sanitize(description),
		Type:         textproc.Sanitize(projectType),
		Technologies: technologies,
		Created:      time.Now(),
		Phase:        models.PhaseInitialSetup,
		Status:       models.StatusActive,
	}

	s.doc.Projects = append(s.doc.Projects, p)
	s.doc.CurrentProject = p

	if err := s.flush(); err != nil {
		return nil, err
	}

	s.log.Info().Str("project_id", p.ID).Str("name", p.Name).Msg("project created")
	return p, nil
}

// RenameProject updates a project's name and, when non-nil, its
// description. The id and creation time are immutable.
func (s *Store) RenameProject(id, newName string, newDescription *string) (*models.Project, error) {
	p := s.findProject(id)
	if p == nil {
		return nil, archerr.NotFound("project %q does not exist", id)
	}

	newName = textproc.Sanitize(newName)
	if newName == "" {
		return nil, archerr.InvalidArguments("new project name is required")
	}
	if other := s.projectByName(newName); other != nil && other.ID != p.ID {
		return nil, archerr.DuplicateName("a project named %q already exists", other.Name)
	}

	p.Name = newName
	if newDescription != nil {
		p.Description = textproc.Sanitize(*newDescription)
	}

	if err := s.flush(); err != nil {
		return nil, err
	}

	s.log.Info().Str("project_id", p.ID).Str("name", p.Name).Msg("project renamed")
	return p, nil
}

// DeleteProject removes a project and cascades to every entity referencing
// its id. The caller must pass confirmed=true; destructive operations are
// never implicit. If the deleted project was current, current moves to an
// arbitrary remaining project, or nil.
func (s *Store) DeleteProject(id string, confirmed bool) (*models.Project, models.CascadeReport, error) {
	var report models.CascadeReport

	if !confirmed {
		return nil, report, archerr.ConfirmationRequired("deleting a project requires confirm_deletion=true")
	}

	p := s.findProject(id)
	if p == nil {
		return nil, report, archerr.NotFound("project %q does not exist", id)
	}

	kept := s.doc.Projects[:0]
	for _, other := range s.doc.Projects {
		if other.ID != id {
			kept = append(kept, other)
		}
	}
	s.doc.Projects = kept

	conversations := s.doc.Conversations[:0]
	for _, c := range s.doc.Conversations {
		if c.ProjectID == id {
			report.Conversations++
			s.dropMappingFor(c)
			continue
		}
		conversations = append(conversations, c)
	}
	s.doc.Conversations = conversations

	notes := s.doc.Notes[:0]
	for _, n := range s.doc.Notes {
		if n.ProjectID == id {
			report.Notes++
			continue
		}
		notes = append(notes, n)
	}
	s.doc.Notes = notes

	decisions := s.doc.Decisions[:0]
	for _, d := range s.doc.Decisions {
		if d.ProjectID == id {
			report.Decisions++
			continue
		}
		decisions = append(decisions, d)
	}
	s.doc.Decisions = decisions

	docs := s.doc.Documentation[:0]
	for _, d := range s.doc.Documentation {
		if d.ProjectID == id {
			report.Documentation++
			continue
		}
		docs = append(docs, d)
	}
	s.doc.Documentation = docs

	if s.doc.CurrentProject != nil && s.doc.CurrentProject.ID == id {
		if len(s.doc.Projects) > 0 {
			s.doc.CurrentProject = s.doc.Projects[0]
		} else {
			s.doc.CurrentProject = nil
		}
	}

	if err := s.flush(); err != nil {
		return nil, report, err
	}

	s.log.Info().Str("project_id", id).Str("name", p.Name).
		Int("cascaded", report.Total()).Msg("project deleted")
	return p, report, nil
}

// SwitchProject sets the current project.
func (s *Store) SwitchProject(id string) (*models.Project, error) {
	p := s.findProject(id)
	if p == nil {
		return nil, archerr.NotFound("project %q does not exist", id)
	}

	s.doc.CurrentProject = p

	if err := s.flush(); err != nil {
		return nil, err
	}
	return p, nil
}

// ProjectContext is the aggregate view returned by GetProjectContext.
type ProjectContext struct {
	Project             *models.Project
	ConversationCount   int
	NoteCount           int
	DecisionCount       int
	DocumentationCount  int
	RecentConversations []*models.Conversation
	RecentDecisions     []*models.TechnicalDecision
}

// GetProjectContext aggregates a project's entities. An empty id targets
// the current project.
func (s *Store) GetProjectContext(projectID string) (*ProjectContext, error) {
	var p *models.Project
	if projectID == "" {
		if s.doc.CurrentProject == nil {
			return nil, archerr.NoCurrentProject()
		}
		p = s.doc.CurrentProject
	} else {
		p = s.findProject(projectID)
		if p == nil {
			return nil, archerr.NotFound("project %q does not exist", projectID)
		}
	}

	ctx := &ProjectContext{Project: p}
	for _, c := range s.doc.Conversations {
		if c.ProjectID == p.ID {
			ctx.ConversationCount++
			ctx.RecentConversations = append(ctx.RecentConversations, c)
		}
	}
	for _, n := range s.doc.Notes {
		if n.ProjectID == p.ID {
			ctx.NoteCount++
		}
	}
	for _, d := range s.doc.Decisions {
		if d.ProjectID == p.ID {
			ctx.DecisionCount++
			ctx.RecentDecisions = append(ctx.RecentDecisions, d)
		}
	}
	for _, d := range s.doc.Documentation {
		if d.ProjectID == p.ID {
			ctx.DocumentationCount++
		}
	}

	// Keep only the most recent few of each; collection order is insertion
	// order, so the tail is the most recent.
	const recent = 5
	if len(ctx.RecentConversations) > recent {
		ctx.RecentConversations = ctx.RecentConversations[len(ctx.RecentConversations)-recent:]
	}
	if len(ctx.RecentDecisions) > recent {
		ctx.RecentDecisions = ctx.RecentDecisions[len(ctx.RecentDecisions)-recent:]
	}

	return ctx, nil
}

// CreateNote records a standalone note, attached to the current project
// when one is selected.
func (s *Store) CreateNote(title, content string) (*models.Note, error) {
	title = textproc.Sanitize(title)
	if title == "" {
		return nil, archerr.InvalidArguments("note title is required")
	}
	if content == "" {
		return nil, archerr.InvalidArguments("note content is required")
	}

	n := &models.Note{
		ID:        NewID(),
		Title:     title,
		Content:   content,
		Timestamp: time.Now(),
	}
	if s.doc.CurrentProject != nil {
		n.ProjectID = s.doc.CurrentProject.ID
	}

	s.doc.Notes = append(s.doc.Notes, n)

	if err := s.flush(); err != nil {
		return nil, err
	}
	return n, nil
}

// RecordDecision records a technical decision on the current project.
func (s *Store) RecordDecision(decision, reasoning, impact string) (*models.TechnicalDecision, error) {
	if s.doc.CurrentProject == nil {
		return nil, archerr.NoCurrentProject()
	}
	decision = textproc.Sanitize(decision)
	if decision == "" {
		return nil, archerr.InvalidArguments("decision text is required")
	}

	d := &models.TechnicalDecision{
		ID:        NewID(),
		ProjectID: s.doc.CurrentProject.ID,
		Decision:  decision,
		Reasoning: textproc.Sanitize(reasoning),
		Impact:    textproc.Sanitize(impact),
		Timestamp: time.Now(),
	}
	s.doc.Decisions = append(s.doc.Decisions, d)

	if err := s.flush(); err != nil {
		return nil, err
	}
	return d, nil
}

// AddDocumentation records a documentation entry on the current project.
// Relevance defaults to medium.
func (s *Store) AddDocumentation(technology, title, content, relevance string) (*models.Documentation, error) {
	if s.doc.CurrentProject == nil {
		return nil, archerr.NoCurrentProject()
	}
	if relevance == "" {
		relevance = "medium"
	}
	switch relevance {
	case "high", "medium", "low":
	default:
		return nil, archerr.InvalidArguments("relevance must be high, medium or low, got %q", relevance)
	}
	title = textproc.Sanitize(title)
	if technology == "" || title == "" {
		return nil, archerr.InvalidArguments("technology and title are required")
	}

	d := &models.Documentation{
		ID:         NewID(),
		ProjectID:  s.doc.CurrentProject.ID,
		Technology: textproc.Sanitize(technology),
		Title:      title,
		Content:    content,
		Relevance:  relevance,
		Timestamp:  time.Now(),
	}
	s.doc.Documentation = append(s.doc.Documentation, d)

	if err := s.flush(); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateBackup copies both documents into a timestamped backup directory.
func (s *Store) CreateBackup() (string, error) {
	return s.persist.CreateBackup()
}

// StorageHealth reports the persistence layer's health plus whether this
// process started empty because of a load failure.
type StorageHealth struct {
	*storage.Health
	StartedEmptyAfterLoadFailure bool `json:"started_empty_after_load_failure"`
}

// CheckStorageHealth inspects the storage directory.
func (s *Store) CheckStorageHealth() (*StorageHealth, error) {
	h, err := s.persist.CheckHealth()
	if err != nil {
		return nil, err
	}
	return &StorageHealth{
		Health:                       h,
		StartedEmptyAfterLoadFailure: s.loadReport.Status == storage.LoadFallback,
	}, nil
}
