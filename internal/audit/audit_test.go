package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestTrail(t *testing.T) {
	dir := t.TempDir()

	trail, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := trail.Record(Entry{Operation: "create_project"}); err != nil {
		t.Fatal(err)
	}
	if err := trail.Record(Entry{Operation: "delete_project", Failed: true, Kind: "confirmation_required"}); err != nil {
		t.Fatal(err)
	}
	if err := trail.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "operations.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad audit line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Operation != "create_project" || entries[0].Failed {
		t.Errorf("first entry = %+v", entries[0])
	}
	if !entries[1].Failed || entries[1].Kind != "confirmation_required" {
		t.Errorf("second entry = %+v", entries[1])
	}
	if entries[0].Time.IsZero() {
		t.Error("entry time not stamped")
	}
}

func TestTrailAppendsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		trail, err := Open(dir)
		if err != nil {
			t.Fatal(err)
		}
		if err := trail.Record(Entry{Operation: "list_projects"}); err != nil {
			t.Fatal(err)
		}
		trail.Close()
	}

	data, err := os.ReadFile(filepath.Join(dir, "operations.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("trail has %d lines, want 2", lines)
	}
}
