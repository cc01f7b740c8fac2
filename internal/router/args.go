package router

import (
	"github.com/HelloDave666/mcp-workspace/internal/archerr"
)

// Request is a decoded operation: one concrete argument record per
// operation name. Arguments are validated and converted exactly once, here
// at the router boundary; store methods receive typed values only.
type Request interface {
	operation() string
}

type ListProjects struct{}

type CreateProject struct {
	Name         string
	Description  string
	Type         string
	Technologies []string
}

type RenameProject struct {
	ProjectID      string
	NewName        string
	NewDescription *string
}

type DeleteProject struct {
	ProjectID       string
	ConfirmDeletion bool
}

type SwitchProject struct {
	ProjectID string
}

type GetProjectContext struct {
	ProjectID string
}

type ImportConversation struct {
	ConversationText string
	Summary          string
	Phase            string
	ArchiveType      string
}

type SearchHistory struct {
	Query     string
	ProjectID string
}

type CreateNote struct {
	Title   string
	Content string
}

type CheckStorageHealth struct{}

type CreateManualBackup struct{}

type MigrateLegacyData struct{}

type AnalyzeIntegrity struct{}

type DetectDuplicates struct{}

type CleanupDuplicates struct{}

type DeleteConversation struct {
	ConversationID string
}

type RegenerateConversationIDs struct{}

type RecordTechnicalDecision struct {
	Decision  string
	Reasoning string
	Impact    string
}

type AddDocumentation struct {
	Technology string
	Title      string
	Content    string
	Relevance  string
}

func (ListProjects) operation() string              { return "list_projects" }
func (CreateProject) operation() string             { return "create_project" }
func (RenameProject) operation() string             { return "rename_project" }
func (DeleteProject) operation() string             { return "delete_project" }
func (SwitchProject) operation() string             { return "switch_project" }
func (GetProjectContext) operation() string         { return "get_project_context" }
func (ImportConversation) operation() string        { return "import_claude_conversation" }
func (SearchHistory) operation() string             { return "search_conversation_history" }
func (CreateNote) operation() string                { return "create_note" }
func (CheckStorageHealth) operation() string        { return "check_storage_health" }
func (CreateManualBackup) operation() string        { return "create_manual_backup" }
func (MigrateLegacyData) operation() string         { return "migrate_legacy_data" }
func (AnalyzeIntegrity) operation() string          { return "analyze_project_integrity" }
func (DetectDuplicates) operation() string          { return "detect_duplicates" }
func (CleanupDuplicates) operation() string         { return "cleanup_duplicates" }
func (DeleteConversation) operation() string        { return "delete_conversation" }
func (RegenerateConversationIDs) operation() string { return "regenerate_conversation_ids" }
func (RecordTechnicalDecision) operation() string   { return "record_technical_decision" }
func (AddDocumentation) operation() string          { return "add_documentation" }

// Decode converts a transport argument map into the operation's typed
// record. Missing required fields and type mismatches fail with
// invalid_arguments; unknown keys are ignored.
func Decode(op string, args map[string]interface{}) (Request, error) {
	switch op {
	case "list_projects":
		return ListProjects{}, nil

	case "create_project":
		name, err := requireString(args, "name")
		if err != nil {
			return nil, err
		}
		description, err := requireString(args, "description")
		if err != nil {
			return nil, err
		}
		technologies, err := optionalStringSlice(args, "technologies")
		if err != nil {
			return nil, err
		}
		typ, err := optionalString(args, "type")
		if err != nil {
			return nil, err
		}
		return CreateProject{Name: name, Description: description, Type: typ, Technologies: technologies}, nil

	case "rename_project":
		id, err := requireString(args, "project_id")
		if err != nil {
			return nil, err
		}
		newName, err := requireString(args, "new_name")
		if err != nil {
			return nil, err
		}
		req := RenameProject{ProjectID: id, NewName: newName}
		if _, present := args["new_description"]; present {
			desc, err := optionalString(args, "new_description")
			if err != nil {
				return nil, err
			}
			req.NewDescription = &desc
		}
		return req, nil

	case "delete_project":
		id, err := requireString(args, "project_id")
		if err != nil {
			return nil, err
		}
		confirmed, err := optionalBool(args, "confirm_deletion")
		if err != nil {
			return nil, err
		}
		return DeleteProject{ProjectID: id, ConfirmDeletion: confirmed}, nil

	case "switch_project":
		id, err := requireString(args, "project_id")
		if err != nil {
			return nil, err
		}
		return SwitchProject{ProjectID: id}, nil

	case "get_project_context":
		id, err := optionalString(args, "project_id")
		if err != nil {
			return nil, err
		}
		return GetProjectContext{ProjectID: id}, nil

	case "import_claude_conversation":
		text, err := requireString(args, "conversation_text")
		if err != nil {
			return nil, err
		}
		summary, err := requireString(args, "summary")
		if err != nil {
			return nil, err
		}
		phase, err := optionalString(args, "phase")
		if err != nil {
			return nil, err
		}
		archiveType, err := optionalString(args, "archive_type")
		if err != nil {
			return nil, err
		}
		return ImportConversation{ConversationText: text, Summary: summary, Phase: phase, ArchiveType: archiveType}, nil

	case "search_conversation_history":
		query, err := requireString(args, "query")
		if err != nil {
			return nil, err
		}
		id, err := optionalString(args, "project_id")
		if err != nil {
			return nil, err
		}
		return SearchHistory{Query: query, ProjectID: id}, nil

	case "create_note":
		title, err := requireString(args, "title")
		if err != nil {
			return nil, err
		}
		content, err := requireString(args, "content")
		if err != nil {
			return nil, err
		}
		return CreateNote{Title: title, Content: content}, nil

	case "check_storage_health":
		return CheckStorageHealth{}, nil

	case "create_manual_backup":
		return CreateManualBackup{}, nil

	case "migrate_legacy_data":
		return MigrateLegacyData{}, nil

	case "analyze_project_integrity":
		return AnalyzeIntegrity{}, nil

	case "detect_duplicates":
		return DetectDuplicates{}, nil

	case "cleanup_duplicates":
		return CleanupDuplicates{}, nil

	case "delete_conversation":
		id, err := requireString(args, "conversation_id")
		if err != nil {
			return nil, err
		}
		return DeleteConversation{ConversationID: id}, nil

	case "regenerate_conversation_ids":
		return RegenerateConversationIDs{}, nil

	case "record_technical_decision":
		decision, err := requireString(args, "decision")
		if err != nil {
			return nil, err
		}
		reasoning, err := optionalString(args, "reasoning")
		if err != nil {
			return nil, err
		}
		impact, err := optionalString(args, "impact")
		if err != nil {
			return nil, err
		}
		return RecordTechnicalDecision{Decision: decision, Reasoning: reasoning, Impact: impact}, nil

	case "add_documentation":
		technology, err := requireString(args, "technology")
		if err != nil {
			return nil, err
		}
		title, err := requireString(args, "title")
		if err != nil {
			return nil, err
		}
		content, err := requireString(args, "content")
		if err != nil {
			return nil, err
		}
		relevance, err := optionalString(args, "relevance")
		if err != nil {
			return nil, err
		}
		return AddDocumentation{Technology: technology, Title: title, Content: content, Relevance: relevance}, nil

	default:
		return nil, archerr.New(archerr.KindInvalidArguments, "unknown operation %q", op)
	}
}

func requireString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", archerr.InvalidArguments("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", archerr.InvalidArguments("argument %q must be a string, got %T", key, v)
	}
	if s == "" {
		return "", archerr.InvalidArguments("argument %q must not be empty", key)
	}
	return s, nil
}

func optionalString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", archerr.InvalidArguments("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

func optionalBool(args map[string]interface{}, key string) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, archerr.InvalidArguments("argument %q must be a boolean, got %T", key, v)
	}
	return b, nil
}

// optionalStringSlice accepts either a []string or the []interface{} a JSON
// decoder produces.
func optionalStringSlice(args map[string]interface{}, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, archerr.InvalidArguments("argument %q must be a list of strings, found %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, archerr.InvalidArguments("argument %q must be a list of strings, got %T", key, v)
	}
}
