package watcher

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/models"
	"github.com/HelloDave666/mcp-workspace/internal/storage"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestExternalEditDetected(t *testing.T) {
	dir := t.TempDir()
	files := storage.NewFileStore(storage.DefaultOptions(dir), zerolog.Nop())

	// Materialize the document through a normal save first.
	if err := files.Save(models.EmptyDocument()); err != nil {
		t.Fatal(err)
	}

	w, err := New(files, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if w.ExternalEdit() {
		t.Fatal("flag set before any edit")
	}

	// Simulate another process editing the document: long enough after our
	// own save that the event cannot be attributed to it.
	time.Sleep(ownWriteWindow + 100*time.Millisecond)
	if err := os.WriteFile(files.DocumentPath(), []byte(`{"projects":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, w.ExternalEdit) {
		t.Error("external edit not flagged")
	}
}

func TestOwnSaveNotFlagged(t *testing.T) {
	dir := t.TempDir()
	files := storage.NewFileStore(storage.DefaultOptions(dir), zerolog.Nop())

	w, err := New(files, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := files.Save(models.EmptyDocument()); err != nil {
		t.Fatal(err)
	}

	if waitFor(t, 500*time.Millisecond, w.ExternalEdit) {
		t.Error("own save was flagged as an external edit")
	}
}

func TestUnrelatedFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	files := storage.NewFileStore(storage.DefaultOptions(dir), zerolog.Nop())
	if err := files.Save(models.EmptyDocument()); err != nil {
		t.Fatal(err)
	}

	w, err := New(files, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(ownWriteWindow + 100*time.Millisecond)
	if err := os.WriteFile(dir+"/notes.txt", []byte("scratch"), 0644); err != nil {
		t.Fatal(err)
	}

	if waitFor(t, 500*time.Millisecond, w.ExternalEdit) {
		t.Error("unrelated file write was flagged")
	}
}
