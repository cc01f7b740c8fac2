// Package watcher observes the storage directory and flags edits to the
// archive document made by other processes. The document has exactly one
// writer by contract; an external edit is not merged or reloaded, only
// surfaced so the dashboard can warn that last save wins.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/HelloDave666/mcp-workspace/internal/storage"
)

// ownWriteWindow is how long after one of our own saves a file event on
// the document is still attributed to that save. Saves are staged through
// a temp file and renamed, so the event fires almost immediately.
const ownWriteWindow = 2 * time.Second

// Watcher flags external modifications of the archive document.
type Watcher struct {
	fs    *fsnotify.Watcher
	files *storage.FileStore
	log   zerolog.Logger

	mu           sync.RWMutex
	externalEdit bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher over the given file store's directory.
func New(files *storage.FileStore, logger zerolog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fs:     fs,
		files:  files,
		log:    logger.With().Str("component", "watcher").Logger(),
		stopCh: make(chan struct{}),
	}, nil
}

// Start watches the storage directory and runs the event loop until Stop.
// The directory, not the file, is watched: saves rename a temp file into
// place, which unwatches a file-level watch.
func (w *Watcher) Start() error {
	if err := w.fs.Add(w.files.Dir()); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop()

	w.log.Info().Str("dir", w.files.Dir()).Msg("watching storage directory")
	return nil
}

// Stop ends the event loop and releases the OS watch.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()
	return w.fs.Close()
}

// ExternalEdit reports whether the document changed outside this process
// since the watcher started. The flag is sticky: the in-memory state may
// silently overwrite the external change on the next save, so the warning
// stays relevant until restart.
func (w *Watcher) ExternalEdit() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.externalEdit
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	docName := filepath.Base(w.files.DocumentPath())

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != docName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if time.Since(w.files.LastSaveAt()) < ownWriteWindow {
				continue
			}
			w.flagExternalEdit(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) flagExternalEdit(event fsnotify.Event) {
	w.mu.Lock()
	first := !w.externalEdit
	w.externalEdit = true
	w.mu.Unlock()

	if first {
		w.log.Warn().Str("path", event.Name).Str("op", event.Op.String()).
			Msg("archive document modified by another process; changes will be overwritten on next save")
	}
}
