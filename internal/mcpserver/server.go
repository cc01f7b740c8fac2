// Package mcpserver exposes the operation catalogue over the MCP stdio
// transport. This is the composition surface only: argument schemas and
// delegation live here, all semantics live in the router and the store.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/router"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with one tool registered per catalogue
// operation. Every handler delegates to the router, which never lets an
// error escape unconverted, so handlers always return a well-formed result.
func New(r *router.Router, logger zerolog.Logger) *server.MCPServer {
	log := logger.With().Str("component", "mcpserver").Logger()

	s := server.NewMCPServer(
		"mcp-workspace",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, def := range toolDefinitions() {
		s.AddTool(def, handle(r, def.Name))
	}

	log.Info().Int("tools", len(router.Operations())).Msg("mcp server configured")
	return s
}

// ServeStdio blocks serving the stdio transport until the client
// disconnects or the process is signalled.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func handle(r *router.Router, op string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reply := r.Handle(op, req.GetArguments())
		return toResult(reply), nil
	}
}

// toResult maps the router's transport-neutral reply onto MCP content.
func toResult(reply *router.Reply) *mcp.CallToolResult {
	text := ""
	for i, b := range reply.Blocks {
		if i > 0 {
			text += "\n\n"
		}
		text += b.Text
	}
	if reply.IsError {
		return mcp.NewToolResultError(text)
	}
	return mcp.NewToolResultText(text)
}

func toolDefinitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("list_projects",
			mcp.WithDescription("List every project in the workspace archive, marking the current one."),
		),
		mcp.NewTool("create_project",
			mcp.WithDescription("Create a new project and select it as the current project. Names are unique case-insensitively."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Project name, unique across the workspace.")),
			mcp.WithString("description", mcp.Required(), mcp.Description("What the project is about.")),
			mcp.WithString("type", mcp.Description("Free-form project type tag, e.g. library or service.")),
			mcp.WithArray("technologies", mcp.Description("Technologies used by the project."),
				mcp.Items(map[string]interface{}{"type": "string"})),
		),
		mcp.NewTool("rename_project",
			mcp.WithDescription("Rename a project and optionally replace its description. Id and creation date never change."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Id of the project to rename.")),
			mcp.WithString("new_name", mcp.Required(), mcp.Description("New project name, unique across the workspace.")),
			mcp.WithString("new_description", mcp.Description("New description; omit to keep the current one.")),
		),
		mcp.NewTool("delete_project",
			mcp.WithDescription("Delete a project and every conversation, note, decision and documentation entry attached to it. Requires explicit confirmation."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Id of the project to delete.")),
			mcp.WithBoolean("confirm_deletion", mcp.Description("Must be true; the deletion cascades and cannot be undone.")),
		),
		mcp.NewTool("switch_project",
			mcp.WithDescription("Make another project the current project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Id of the project to switch to.")),
		),
		mcp.NewTool("get_project_context",
			mcp.WithDescription("Show a project's details, entity counts and most recent conversations and decisions."),
			mcp.WithString("project_id", mcp.Description("Project id; omit for the current project.")),
		),
		mcp.NewTool("import_claude_conversation",
			mcp.WithDescription("Archive a conversation under the current project, either in full or as a deterministic summary."),
			mcp.WithString("conversation_text", mcp.Required(), mcp.Description("Full conversation text to archive.")),
			mcp.WithString("summary", mcp.Required(), mcp.Description("One-line human summary of the conversation.")),
			mcp.WithString("phase", mcp.Description("Project phase; auto-detected from the text when omitted.")),
			mcp.WithString("archive_type", mcp.Description("Either full (default) or summary.")),
		),
		mcp.NewTool("search_conversation_history",
			mcp.WithDescription("Search archived conversations by content or summary, case-insensitively."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for.")),
			mcp.WithString("project_id", mcp.Description("Restrict the search to one project.")),
		),
		mcp.NewTool("create_note",
			mcp.WithDescription("Record a note, attached to the current project when one is selected."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Note title.")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Note body.")),
		),
		mcp.NewTool("check_storage_health",
			mcp.WithDescription("Report the storage directory, document size, backup count and any load warnings."),
		),
		mcp.NewTool("create_manual_backup",
			mcp.WithDescription("Copy the archive and mapping documents into a new timestamped backup directory."),
		),
		mcp.NewTool("migrate_legacy_data",
			mcp.WithDescription("Merge data from older installation locations into the current archive. Safe to run repeatedly."),
		),
		mcp.NewTool("analyze_project_integrity",
			mcp.WithDescription("Report archive statistics and recommended follow-up operations."),
		),
		mcp.NewTool("detect_duplicates",
			mcp.WithDescription("Group conversations that look like duplicates of each other, without removing anything."),
		),
		mcp.NewTool("cleanup_duplicates",
			mcp.WithDescription("Remove duplicate conversations, keeping the first of each group."),
		),
		mcp.NewTool("delete_conversation",
			mcp.WithDescription("Delete one conversation. Accepts current, original or legacy ids."),
			mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Id of the conversation to delete.")),
		),
		mcp.NewTool("regenerate_conversation_ids",
			mcp.WithDescription("Assign fresh ids to every conversation; old ids keep resolving through the legacy mapping."),
		),
		mcp.NewTool("record_technical_decision",
			mcp.WithDescription("Record a technical decision on the current project."),
			mcp.WithString("decision", mcp.Required(), mcp.Description("The decision taken.")),
			mcp.WithString("reasoning", mcp.Description("Why it was taken.")),
			mcp.WithString("impact", mcp.Description("Expected impact.")),
		),
		mcp.NewTool("add_documentation",
			mcp.WithDescription("Attach a documentation entry to the current project."),
			mcp.WithString("technology", mcp.Required(), mcp.Description("Technology the entry documents.")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Entry title.")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Entry body.")),
			mcp.WithString("relevance", mcp.Description("high, medium (default) or low.")),
		),
	}
}
