//go:build integration

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/archive"
	"github.com/HelloDave666/mcp-workspace/internal/router"
	"github.com/HelloDave666/mcp-workspace/internal/storage"
)

// TestWorkspaceLifecycle drives the full stack the way an MCP client
// would: operations through the router, state through the store, bytes on
// disk through the file store.
func TestWorkspaceLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	files := storage.NewFileStore(storage.DefaultOptions(dir), zerolog.Nop())
	store, err := archive.New(files, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	r := router.New(store, zerolog.Nop())

	mustHandle := func(op string, args map[string]interface{}) string {
		t.Helper()
		reply := r.Handle(op, args)
		if reply.IsError {
			t.Fatalf("%s failed: %s", op, reply.Blocks[0].Text)
		}
		return reply.Blocks[0].Text
	}

	// Create a project and archive two conversations into it.
	mustHandle("create_project", map[string]interface{}{
		"name":        "Research Pipeline",
		"description": "arXiv ingestion experiments",
	})
	mustHandle("import_claude_conversation", map[string]interface{}{
		"conversation_text": "we need to fix the parser bug before the release",
		"summary":           "parser bug triage",
	})
	mustHandle("import_claude_conversation", map[string]interface{}{
		"conversation_text": strings.Repeat("long discussion about ingestion throughput\n", 40),
		"summary":           "throughput review",
		"archive_type":      "summary",
	})

	// The summary import must have reduced content.
	text := mustHandle("search_conversation_history", map[string]interface{}{"query": "throughput"})
	if !strings.Contains(text, "throughput review") {
		t.Fatalf("search reply = %q", text)
	}

	// The document on disk reflects everything so far.
	raw, err := os.ReadFile(files.DocumentPath())
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Projects      []json.RawMessage `json:"projects"`
		Conversations []json.RawMessage `json:"conversations"`
		Version       string            `json:"version"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Projects) != 1 || len(doc.Conversations) != 2 {
		t.Fatalf("persisted %d projects, %d conversations", len(doc.Projects), len(doc.Conversations))
	}
	if doc.Version == "" {
		t.Error("persisted document has no schema version")
	}

	// Manual backup lands under backups/ with both documents.
	backupText := mustHandle("create_manual_backup", nil)
	if !strings.Contains(backupText, "Backup created") {
		t.Fatalf("backup reply = %q", backupText)
	}
	backups, err := files.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) == 0 {
		t.Fatal("no backup directory created")
	}
	latest := backups[len(backups)-1]
	if _, err := os.Stat(filepath.Join(dir, "backups", latest, "archive.json")); err != nil {
		t.Errorf("backup missing archive document: %v", err)
	}

	// A new process over the same directory sees the same state.
	reopened, err := archive.New(storage.NewFileStore(storage.DefaultOptions(dir), zerolog.Nop()), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(reopened.Projects()) != 1 || len(reopened.Conversations()) != 2 {
		t.Fatalf("restart lost state: %d projects, %d conversations",
			len(reopened.Projects()), len(reopened.Conversations()))
	}

	// Deleting the project cascades and empties the archive.
	projectID := reopened.Projects()[0].ID
	r2 := router.New(reopened, zerolog.Nop())
	reply := r2.Handle("delete_project", map[string]interface{}{
		"project_id":       projectID,
		"confirm_deletion": true,
	})
	if reply.IsError {
		t.Fatalf("delete failed: %s", reply.Blocks[0].Text)
	}
	if len(reopened.Projects()) != 0 || len(reopened.Conversations()) != 0 {
		t.Error("cascade left entities behind")
	}
}
