package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/archive"
	"github.com/HelloDave666/mcp-workspace/internal/storage"
)

type staticEdits bool

func (e staticEdits) ExternalEdit() bool { return bool(e) }

func testServer(t *testing.T, edits EditDetector) (*Server, *archive.Store) {
	t.Helper()
	files := storage.NewFileStore(storage.DefaultOptions(t.TempDir()), zerolog.Nop())
	store, err := archive.New(files, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return NewServer("127.0.0.1:0", store, files, edits, zerolog.Nop()), store
}

func decodeBody(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestListProjects(t *testing.T) {
	srv, store := testServer(t, nil)

	p, err := store.CreateProject("Alpha", "first", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest("GET", "/api/projects", nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Projects         []map[string]interface{} `json:"projects"`
		CurrentProjectID string                    `json:"current_project_id"`
	}
	decodeBody(t, resp, &body)
	if len(body.Projects) != 1 || body.CurrentProjectID != p.ID {
		t.Errorf("body = %+v", body)
	}
}

func TestHealthCarriesExternalEditFlag(t *testing.T) {
	srv, _ := testServer(t, staticEdits(true))

	req, _ := http.NewRequest("GET", "/api/health", nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}

	var body struct {
		ExternalEdit bool `json:"external_edit"`
	}
	decodeBody(t, resp, &body)
	if !body.ExternalEdit {
		t.Error("external_edit flag not surfaced")
	}
}

func TestRenameProject(t *testing.T) {
	srv, store := testServer(t, nil)

	p, err := store.CreateProject("Alpha", "first", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("OK", func(t *testing.T) {
		body := strings.NewReader(`{"new_name":"Alpha Prime"}`)
		req, _ := http.NewRequest("POST", "/api/projects/"+p.ID+"/rename", body)
		req.Header.Set("Content-Type", "application/json")

		resp, err := srv.App().Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if store.Projects()[0].Name != "Alpha Prime" {
			t.Errorf("rename did not apply: %q", store.Projects()[0].Name)
		}
	})

	t.Run("NotFoundMapsTo404", func(t *testing.T) {
		body := strings.NewReader(`{"new_name":"whatever"}`)
		req, _ := http.NewRequest("POST", "/api/projects/missing/rename", body)
		req.Header.Set("Content-Type", "application/json")

		resp, err := srv.App().Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}

		var e struct {
			Kind string `json:"kind"`
		}
		decodeBody(t, resp, &e)
		if e.Kind != "not_found" {
			t.Errorf("kind = %q", e.Kind)
		}
	})

	t.Run("DuplicateMapsTo409", func(t *testing.T) {
		if _, err := store.CreateProject("Beta", "second", "", nil); err != nil {
			t.Fatal(err)
		}
		body := strings.NewReader(`{"new_name":"beta"}`)
		req, _ := http.NewRequest("POST", "/api/projects/"+p.ID+"/rename", body)
		req.Header.Set("Content-Type", "application/json")

		resp, err := srv.App().Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status = %d, want 409", resp.StatusCode)
		}
	})
}

func TestBackupAndIntegrity(t *testing.T) {
	srv, store := testServer(t, nil)
	if _, err := store.CreateProject("Alpha", "first", "", nil); err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest("POST", "/api/backup", nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("backup status = %d", resp.StatusCode)
	}
	var backup struct {
		BackupDir string `json:"backup_dir"`
	}
	decodeBody(t, resp, &backup)
	if backup.BackupDir == "" {
		t.Error("backup_dir missing from response")
	}

	req, _ = http.NewRequest("GET", "/api/integrity", nil)
	resp, err = srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var integrity struct {
		Projects int `json:"projects"`
	}
	decodeBody(t, resp, &integrity)
	if integrity.Projects != 1 {
		t.Errorf("integrity projects = %d", integrity.Projects)
	}
}

func TestSearch(t *testing.T) {
	srv, store := testServer(t, nil)
	if _, err := store.CreateProject("Alpha", "first", "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ImportConversation("the fox jumped over the fence", "fox talk", "", ""); err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest("GET", "/api/search?q=fox", nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	decodeBody(t, resp, &body)
	if len(body.Results) != 1 {
		t.Errorf("results = %d, want 1", len(body.Results))
	}

	req, _ = http.NewRequest("GET", "/api/search", nil)
	resp, err = srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", resp.StatusCode)
	}
}
