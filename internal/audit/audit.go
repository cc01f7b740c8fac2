// Package audit appends one JSON line per handled operation to a log file
// in the storage directory. The trail answers "what changed my archive and
// when" independently of the process log, which goes to stderr and is gone
// when the terminal closes.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxTrailSize is the rotation threshold. One previous generation is kept.
const maxTrailSize = 5 << 20

// Entry is one audited operation.
type Entry struct {
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	Failed    bool      `json:"failed,omitempty"`
	Kind      string    `json:"kind,omitempty"`
}

// Trail is an append-only operation log with size-based rotation.
type Trail struct {
	mu   sync.Mutex
	f    *os.File
	path string
	size int64
}

// Open creates or appends to <dir>/operations.log.
func Open(dir string) (*Trail, error) {
	path := filepath.Join(dir, "operations.log")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit trail: %w", err)
	}

	size := int64(0)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return &Trail{f: f, path: path, size: size}, nil
}

// Record appends one entry. A write failure is returned, not fatal; the
// caller decides whether an unauditable operation should still proceed.
func (t *Trail) Record(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	line = append(line, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.size+int64(len(line)) > maxTrailSize {
		if err := t.rotate(); err != nil {
			return err
		}
	}

	n, err := t.f.Write(line)
	t.size += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// rotate moves the current trail aside and starts a fresh one. The caller
// holds the mutex.
func (t *Trail) rotate() error {
	if err := t.f.Close(); err != nil {
		return fmt.Errorf("failed to close audit trail for rotation: %w", err)
	}
	if err := os.Rename(t.path, t.path+".1"); err != nil {
		return fmt.Errorf("failed to rotate audit trail: %w", err)
	}

	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to reopen audit trail: %w", err)
	}
	t.f = f
	t.size = 0
	return nil
}

// Close flushes and closes the trail.
func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.f.Close()
}
