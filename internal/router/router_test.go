package router

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/archive"
	"github.com/HelloDave666/mcp-workspace/internal/storage"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	fs := storage.NewFileStore(storage.DefaultOptions(t.TempDir()), zerolog.Nop())
	store, err := archive.New(fs, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return New(store, zerolog.Nop())
}

func replyText(t *testing.T, r *Reply) string {
	t.Helper()
	if len(r.Blocks) != 1 {
		t.Fatalf("reply has %d blocks, want 1", len(r.Blocks))
	}
	if r.Blocks[0].Type != "text" {
		t.Fatalf("block type = %q, want text", r.Blocks[0].Type)
	}
	return r.Blocks[0].Text
}

func TestDecode(t *testing.T) {
	t.Run("TypedRecord", func(t *testing.T) {
		req, err := Decode("create_project", map[string]interface{}{
			"name":         "Alpha",
			"description":  "first",
			"technologies": []interface{}{"go", "sqlite"},
		})
		if err != nil {
			t.Fatal(err)
		}
		cp, ok := req.(CreateProject)
		if !ok {
			t.Fatalf("decoded %T, want CreateProject", req)
		}
		if cp.Name != "Alpha" || len(cp.Technologies) != 2 {
			t.Errorf("decoded record = %+v", cp)
		}
	})

	t.Run("MissingRequired", func(t *testing.T) {
		_, err := Decode("create_project", map[string]interface{}{"name": "Alpha"})
		if err == nil {
			t.Fatal("expected error for missing description")
		}
	})

	t.Run("WrongType", func(t *testing.T) {
		_, err := Decode("delete_project", map[string]interface{}{
			"project_id":       "x",
			"confirm_deletion": "yes",
		})
		if err == nil {
			t.Fatal("expected error for string confirm_deletion")
		}
	})

	t.Run("UnknownOperation", func(t *testing.T) {
		_, err := Decode("frobnicate", nil)
		if err == nil {
			t.Fatal("expected error for unknown operation")
		}
	})

	t.Run("AbsentDescriptionStaysNil", func(t *testing.T) {
		req, err := Decode("rename_project", map[string]interface{}{
			"project_id": "x",
			"new_name":   "y",
		})
		if err != nil {
			t.Fatal(err)
		}
		if req.(RenameProject).NewDescription != nil {
			t.Error("absent new_description should decode to nil")
		}
	})

	t.Run("EveryCataloguedOperationDecodes", func(t *testing.T) {
		args := map[string]interface{}{
			"name": "n", "description": "d",
			"project_id": "p", "new_name": "nn",
			"conversation_text": "t", "summary": "s",
			"query": "q", "title": "ti", "content": "c",
			"conversation_id": "c1", "decision": "de",
			"technology": "go",
		}
		for _, op := range Operations() {
			if _, err := Decode(op, args); err != nil {
				t.Errorf("operation %s failed to decode: %v", op, err)
			}
		}
	})
}

func TestHandleLifecycle(t *testing.T) {
	r := newTestRouter(t)

	t.Run("EmptyList", func(t *testing.T) {
		reply := r.Handle("list_projects", nil)
		if reply.IsError {
			t.Fatalf("unexpected error reply: %s", replyText(t, reply))
		}
		if !strings.Contains(replyText(t, reply), "No projects") {
			t.Errorf("reply = %q", replyText(t, reply))
		}
	})

	t.Run("CreateAndList", func(t *testing.T) {
		reply := r.Handle("create_project", map[string]interface{}{
			"name":        "Alpha",
			"description": "the first one",
		})
		if reply.IsError {
			t.Fatalf("create failed: %s", replyText(t, reply))
		}

		reply = r.Handle("list_projects", nil)
		text := replyText(t, reply)
		if !strings.Contains(text, "Alpha") || !strings.Contains(text, "* ") {
			t.Errorf("list does not mark Alpha current: %q", text)
		}
	})

	t.Run("ImportAndSearch", func(t *testing.T) {
		reply := r.Handle("import_claude_conversation", map[string]interface{}{
			"conversation_text": "we fixed the flaky websocket reconnect bug today",
			"summary":           "websocket fix",
		})
		if reply.IsError {
			t.Fatalf("import failed: %s", replyText(t, reply))
		}
		if !strings.Contains(replyText(t, reply), "phase debugging") {
			t.Errorf("import reply should carry the detected phase: %q", replyText(t, reply))
		}

		reply = r.Handle("search_conversation_history", map[string]interface{}{"query": "websocket"})
		if !strings.Contains(replyText(t, reply), "websocket fix") {
			t.Errorf("search reply = %q", replyText(t, reply))
		}
	})

	t.Run("HealthAndIntegrity", func(t *testing.T) {
		reply := r.Handle("check_storage_health", nil)
		if reply.IsError {
			t.Fatalf("health failed: %s", replyText(t, reply))
		}
		if !strings.Contains(replyText(t, reply), "Archive document") {
			t.Errorf("health reply = %q", replyText(t, reply))
		}

		reply = r.Handle("analyze_project_integrity", nil)
		if !strings.Contains(replyText(t, reply), "Projects: 1") {
			t.Errorf("integrity reply = %q", replyText(t, reply))
		}
	})

	t.Run("Backup", func(t *testing.T) {
		reply := r.Handle("create_manual_backup", nil)
		if reply.IsError {
			t.Fatalf("backup failed: %s", replyText(t, reply))
		}
		if !strings.Contains(replyText(t, reply), "Backup created") {
			t.Errorf("backup reply = %q", replyText(t, reply))
		}
	})
}

func TestHandleErrorShaping(t *testing.T) {
	r := newTestRouter(t)

	t.Run("KindPrefixesMessage", func(t *testing.T) {
		reply := r.Handle("switch_project", map[string]interface{}{"project_id": "missing"})
		if !reply.IsError {
			t.Fatal("expected error reply")
		}
		if !strings.HasPrefix(replyText(t, reply), "not_found: ") {
			t.Errorf("error reply = %q, want not_found prefix", replyText(t, reply))
		}
	})

	t.Run("ConfirmationRequired", func(t *testing.T) {
		r.Handle("create_project", map[string]interface{}{"name": "Doomed", "description": "x"})
		reply := r.Handle("list_projects", nil)
		text := replyText(t, reply)
		idStart := strings.Index(text, "[")
		idEnd := strings.Index(text, "]")
		id := text[idStart+1 : idEnd]

		reply = r.Handle("delete_project", map[string]interface{}{"project_id": id})
		if !reply.IsError || !strings.HasPrefix(replyText(t, reply), "confirmation_required: ") {
			t.Errorf("error reply = %q", replyText(t, reply))
		}

		reply = r.Handle("delete_project", map[string]interface{}{
			"project_id":       id,
			"confirm_deletion": true,
		})
		if reply.IsError {
			t.Errorf("confirmed delete failed: %s", replyText(t, reply))
		}
	})

	t.Run("InvalidArguments", func(t *testing.T) {
		reply := r.Handle("create_note", map[string]interface{}{"title": "only a title"})
		if !reply.IsError || !strings.HasPrefix(replyText(t, reply), "invalid_arguments: ") {
			t.Errorf("error reply = %q", replyText(t, reply))
		}
	})

	t.Run("NoCurrentProject", func(t *testing.T) {
		reply := r.Handle("record_technical_decision", map[string]interface{}{"decision": "use JSON"})
		if !reply.IsError || !strings.HasPrefix(replyText(t, reply), "no_current_project: ") {
			t.Errorf("error reply = %q", replyText(t, reply))
		}
	})

	t.Run("MessageIsSanitized", func(t *testing.T) {
		reply := r.Handle("switch_project", map[string]interface{}{"project_id": "tab\there"})
		text := replyText(t, reply)
		if strings.ContainsAny(text, "\t\"\\") {
			t.Errorf("error message not sanitized: %q", text)
		}
	})
}
