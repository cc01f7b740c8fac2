// Package router dispatches named operations to the archive store and
// shapes results into transport-neutral replies. It is the only layer that
// touches loosely-typed argument maps; everything below it works with
// typed values, and everything above it sees only Reply values.
package router

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/archerr"
	"github.com/HelloDave666/mcp-workspace/internal/archive"
	"github.com/HelloDave666/mcp-workspace/internal/audit"
	"github.com/HelloDave666/mcp-workspace/internal/textproc"
)

// Block is one content block of a reply.
type Block struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply is the transport-neutral result of an operation. Error replies
// carry exactly one block whose text is "kind: message".
type Reply struct {
	Blocks  []Block `json:"blocks"`
	IsError bool    `json:"isError,omitempty"`
}

func textReply(text string) *Reply {
	return &Reply{Blocks: []Block{{Type: "text", Text: text}}}
}

// ErrorReply converts any error into the transport's error shape. The kind
// string is stable; clients branch on it rather than on the message.
func ErrorReply(err error) *Reply {
	return &Reply{
		IsError: true,
		Blocks: []Block{{
			Type: "text",
			Text: fmt.Sprintf("%s: %s", archerr.KindOf(err), textproc.Sanitize(archerr.MessageOf(err))),
		}},
	}
}

// Operations lists every operation name the router accepts, in catalogue
// order. The MCP layer registers one tool per entry.
func Operations() []string {
	return []string{
		"list_projects",
		"create_project",
		"rename_project",
		"delete_project",
		"switch_project",
		"get_project_context",
		"import_claude_conversation",
		"search_conversation_history",
		"create_note",
		"check_storage_health",
		"create_manual_backup",
		"migrate_legacy_data",
		"analyze_project_integrity",
		"detect_duplicates",
		"cleanup_duplicates",
		"delete_conversation",
		"regenerate_conversation_ids",
		"record_technical_decision",
		"add_documentation",
	}
}

// Auditor records handled operations. *audit.Trail satisfies it.
type Auditor interface {
	Record(e audit.Entry) error
}

// Router dispatches decoded requests against a single archive store.
type Router struct {
	store *archive.Store
	log   zerolog.Logger
	trail Auditor
}

// Option configures a Router.
type Option func(*Router)

// WithAudit records every handled operation to the given trail.
func WithAudit(trail Auditor) Option {
	return func(r *Router) { r.trail = trail }
}

// New creates a router over the given store.
func New(store *archive.Store, logger zerolog.Logger, opts ...Option) *Router {
	r := &Router{
		store: store,
		log:   logger.With().Str("component", "router").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle decodes and dispatches one operation, converting any failure into
// an error reply. It never returns an error: the transport layer above
// always gets a well-formed reply.
func (r *Router) Handle(op string, args map[string]interface{}) *Reply {
	req, err := Decode(op, args)
	if err != nil {
		r.log.Warn().Str("operation", op).Err(err).Msg("argument decoding failed")
		r.audit(op, err)
		return ErrorReply(err)
	}

	reply, err := r.Dispatch(req)
	r.audit(op, err)
	if err != nil {
		r.log.Warn().Str("operation", op).Str("kind", string(archerr.KindOf(err))).
			Err(err).Msg("operation failed")
		return ErrorReply(err)
	}

	r.log.Debug().Str("operation", op).Msg("operation handled")
	return reply
}

func (r *Router) audit(op string, opErr error) {
	if r.trail == nil {
		return
	}
	e := audit.Entry{Operation: op}
	if opErr != nil {
		e.Failed = true
		e.Kind = string(archerr.KindOf(opErr))
	}
	if err := r.trail.Record(e); err != nil {
		r.log.Warn().Err(err).Msg("audit write failed")
	}
}

// Dispatch runs one decoded request to completion. A nil error means the
// mutation, if any, reached disk.
func (r *Router) Dispatch(req Request) (*Reply, error) {
	switch req := req.(type) {
	case ListProjects:
		return r.listProjects()
	case CreateProject:
		return r.createProject(req)
	case RenameProject:
		return r.renameProject(req)
	case DeleteProject:
		return r.deleteProject(req)
	case SwitchProject:
		return r.switchProject(req)
	case GetProjectContext:
		return r.projectContext(req)
	case ImportConversation:
		return r.importConversation(req)
	case SearchHistory:
		return r.searchHistory(req)
	case CreateNote:
		return r.createNote(req)
	case CheckStorageHealth:
		return r.storageHealth()
	case CreateManualBackup:
		return r.manualBackup()
	case MigrateLegacyData:
		return r.migrate()
	case AnalyzeIntegrity:
		return r.integrity()
	case DetectDuplicates:
		return r.detectDuplicates()
	case CleanupDuplicates:
		return r.cleanupDuplicates()
	case DeleteConversation:
		return r.deleteConversation(req)
	case RegenerateConversationIDs:
		return r.regenerateIDs()
	case RecordTechnicalDecision:
		return r.recordDecision(req)
	case AddDocumentation:
		return r.addDocumentation(req)
	default:
		return nil, archerr.New(archerr.KindInternal, "no handler for operation %q", req.operation())
	}
}

func (r *Router) listProjects() (*Reply, error) {
	projects := r.store.Projects()
	if len(projects) == 0 {
		return textReply("No projects yet. Use create_project to start one."), nil
	}

	current := r.store.CurrentProject()

	var b strings.Builder
	fmt.Fprintf(&b, "%d project(s):\n", len(projects))
	for _, p := range projects {
		marker := "  "
		if current != nil && current.ID == p.ID {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s%s [%s] — phase: %s, status: %s\n",
			marker, textproc.Sanitize(p.Name), p.ID, p.Phase, p.Status)
		if p.Description != "" {
			fmt.Fprintf(&b, "    %s\n", textproc.Sanitize(p.Description))
		}
	}
	return textReply(strings.TrimRight(b.String(), "\n")), nil
}

func (r *Router) createProject(req CreateProject) (*Reply, error) {
	p, err := r.store.CreateProject(req.Name, req.Description, req.Type, req.Technologies)
	if err != nil {
		return nil, err
	}
	return textReply(fmt.Sprintf("Project %q created (id %s) and selected as current.",
		textproc.Sanitize(p.Name), p.ID)), nil
}

func (r *Router) renameProject(req RenameProject) (*Reply, error) {
	p, err := r.store.RenameProject(req.ProjectID, req.NewName, req.NewDescription)
	if err != nil {
		return nil, err
	}
	return textReply(fmt.Sprintf("Project %s renamed to %q.", p.ID, textproc.Sanitize(p.Name))), nil
}

func (r *Router) deleteProject(req DeleteProject) (*Reply, error) {
	p, cascade, err := r.store.DeleteProject(req.ProjectID, req.ConfirmDeletion)
	if err != nil {
		return nil, err
	}
	return textReply(fmt.Sprintf(
		"Project %q deleted with %d dependent record(s): %d conversation(s), %d note(s), %d decision(s), %d documentation record(s).",
		textproc.Sanitize(p.Name), cascade.Total(),
		cascade.Conversations, cascade.Notes, cascade.Decisions, cascade.Documentation)), nil
}

func (r *Router) switchProject(req SwitchProject) (*Reply, error) {
	p, err := r.store.SwitchProject(req.ProjectID)
	if err != nil {
		return nil, err
	}
	return textReply(fmt.Sprintf("Current project is now %q.", textproc.Sanitize(p.Name))), nil
}

func (r *Router) projectContext(req GetProjectContext) (*Reply, error) {
	ctx, err := r.store.GetProjectContext(req.ProjectID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	p := ctx.Project
	fmt.Fprintf(&b, "Project %q [%s]\n", textproc.Sanitize(p.Name), p.ID)
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", textproc.Sanitize(p.Description))
	}
	fmt.Fprintf(&b, "Phase: %s | Status: %s | Created: %s\n",
		p.Phase, p.Status, p.Created.Format("2006-01-02"))
	if len(p.Technologies) > 0 {
		fmt.Fprintf(&b, "Technologies: %s\n", strings.Join(p.Technologies, ", "))
	}
	fmt.Fprintf(&b, "Conversations: %d | Notes: %d | Decisions: %d | Documentation: %d\n",
		ctx.ConversationCount, ctx.NoteCount, ctx.DecisionCount, ctx.DocumentationCount)

	if len(ctx.RecentConversations) > 0 {
		b.WriteString("Recent conversations:\n")
		for _, c := range ctx.RecentConversations {
			fmt.Fprintf(&b, "  - [%s] %s (%s, %s)\n",
				c.Timestamp.Format("2006-01-02"), textproc.Sanitize(c.Summary), c.Phase, c.ArchiveType)
		}
	}
	if len(ctx.RecentDecisions) > 0 {
		b.WriteString("Recent decisions:\n")
		for _, d := range ctx.RecentDecisions {
			fmt.Fprintf(&b, "  - [%s] %s\n",
				d.Timestamp.Format("2006-01-02"), textproc.Sanitize(d.Decision))
		}
	}
	return textReply(strings.TrimRight(b.String(), "\n")), nil
}

func (r *Router) importConversation(req ImportConversation) (*Reply, error) {
	res, err := r.store.ImportConversation(req.ConversationText, req.Summary, req.Phase, req.ArchiveType)
	if err != nil {
		return nil, err
	}

	c := res.Conversation
	if res.Summarized {
		return textReply(fmt.Sprintf(
			"Conversation archived as summary (id %s, phase %s): %d characters kept of %d (%d%% reduction).",
			c.ID, c.Phase, len(c.Content), c.OriginalLength, res.ReductionPct)), nil
	}
	return textReply(fmt.Sprintf("Conversation archived in full (id %s, phase %s, %d characters).",
		c.ID, c.Phase, c.OriginalLength)), nil
}

func (r *Router) searchHistory(req SearchHistory) (*Reply, error) {
	results, err := r.store.SearchConversations(req.Query, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return textReply(fmt.Sprintf("No conversation matches %q.", textproc.Sanitize(req.Query))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es) for %q:\n", len(results), textproc.Sanitize(req.Query))
	for _, res := range results {
		c := res.Conversation
		fmt.Fprintf(&b, "  - [%s] %s — project %s, phase %s (id %s)\n",
			c.Timestamp.Format("2006-01-02"), textproc.Sanitize(c.Summary),
			textproc.Sanitize(res.ProjectName), c.Phase, c.ID)
	}
	return textReply(strings.TrimRight(b.String(), "\n")), nil
}

func (r *Router) createNote(req CreateNote) (*Reply, error) {
	n, err := r.store.CreateNote(req.Title, req.Content)
	if err != nil {
		return nil, err
	}
	if n.ProjectID != "" {
		return textReply(fmt.Sprintf("Note %q created (id %s) on project %s.",
			textproc.Sanitize(n.Title), n.ID, n.ProjectID)), nil
	}
	return textReply(fmt.Sprintf("Note %q created (id %s).", textproc.Sanitize(n.Title), n.ID)), nil
}

func (r *Router) storageHealth() (*Reply, error) {
	h, err := r.store.CheckStorageHealth()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Storage directory: %s\n", h.Dir)
	if h.Exists {
		fmt.Fprintf(&b, "Archive document: %s (%d bytes, last updated %s)\n",
			h.DocumentPath, h.DocumentSize, h.LastUpdated.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintf(&b, "Archive document: %s (not written yet)\n", h.DocumentPath)
	}
	fmt.Fprintf(&b, "Backups: %d\n", h.Backups)
	if h.StartedEmptyAfterLoadFailure {
		b.WriteString("WARNING: this session started empty because the existing document could not be read.\n")
	}
	return textReply(strings.TrimRight(b.String(), "\n")), nil
}

func (r *Router) manualBackup() (*Reply, error) {
	dir, err := r.store.CreateBackup()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return textReply("Nothing to back up yet: no archive document exists."), nil
	}
	return textReply(fmt.Sprintf("Backup created at %s.", dir)), nil
}

func (r *Router) migrate() (*Reply, error) {
	report, err := r.store.MigrateLegacyData()
	if err != nil {
		return nil, err
	}
	if len(report.LocationsFound) == 0 {
		return textReply("No legacy data found at any known location."), nil
	}
	return textReply(fmt.Sprintf("Migrated %d record(s) and %d id mapping(s) from %d legacy location(s): %s.",
		report.Merged, report.MappingsMerged, len(report.LocationsFound),
		strings.Join(report.LocationsFound, ", "))), nil
}

func (r *Router) integrity() (*Reply, error) {
	report := r.store.AnalyzeIntegrity()

	var b strings.Builder
	fmt.Fprintf(&b, "Projects: %d | Conversations: %d (full: %d, summary: %d, not archived: %d)\n",
		report.Projects, report.Conversations,
		report.ArchivedFull, report.ArchivedSummary, report.NotArchived)
	if len(report.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}
	return textReply(strings.TrimRight(b.String(), "\n")), nil
}

func (r *Router) detectDuplicates() (*Reply, error) {
	groups := r.store.DetectDuplicates()
	if len(groups) == 0 {
		return textReply("No duplicate conversations detected."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d duplicate group(s), %d conversation(s) removable:\n",
		len(groups), len(r.store.RemovableDuplicates()))
	for i, g := range groups {
		fmt.Fprintf(&b, "Group %d (%d conversations):\n", i+1, len(g.Conversations))
		for _, c := range g.Conversations {
			fmt.Fprintf(&b, "  - [%s] %s (id %s)\n",
				c.Timestamp.Format("2006-01-02"), textproc.Sanitize(c.Summary), c.ID)
		}
	}
	return textReply(strings.TrimRight(b.String(), "\n")), nil
}

func (r *Router) cleanupDuplicates() (*Reply, error) {
	report, err := r.store.CleanupDuplicates()
	if err != nil {
		return nil, err
	}
	if report.Removed == 0 {
		return textReply("No duplicate conversations to remove."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Removed %d duplicate(s) across %d group(s):\n", report.Removed, report.Groups)
	for _, title := range report.RemovedTitles {
		fmt.Fprintf(&b, "  - %s\n", textproc.Sanitize(title))
	}
	return textReply(strings.TrimRight(b.String(), "\n")), nil
}

func (r *Router) deleteConversation(req DeleteConversation) (*Reply, error) {
	c, err := r.store.DeleteConversation(req.ConversationID)
	if err != nil {
		return nil, err
	}
	return textReply(fmt.Sprintf("Conversation %q deleted (id %s).",
		textproc.Sanitize(c.Summary), c.ID)), nil
}

func (r *Router) regenerateIDs() (*Reply, error) {
	n, err := r.store.RegenerateAllIDs()
	if err != nil {
		return nil, err
	}
	return textReply(fmt.Sprintf(
		"Regenerated ids for %d conversation(s); previous ids remain resolvable through the legacy mapping.", n)), nil
}

func (r *Router) recordDecision(req RecordTechnicalDecision) (*Reply, error) {
	d, err := r.store.RecordDecision(req.Decision, req.Reasoning, req.Impact)
	if err != nil {
		return nil, err
	}
	return textReply(fmt.Sprintf("Decision recorded (id %s): %s",
		d.ID, textproc.Sanitize(d.Decision))), nil
}

func (r *Router) addDocumentation(req AddDocumentation) (*Reply, error) {
	d, err := r.store.AddDocumentation(req.Technology, req.Title, req.Content, req.Relevance)
	if err != nil {
		return nil, err
	}
	return textReply(fmt.Sprintf("Documentation %q added for %s (relevance %s, id %s).",
		textproc.Sanitize(d.Title), textproc.Sanitize(d.Technology), d.Relevance, d.ID)), nil
}
