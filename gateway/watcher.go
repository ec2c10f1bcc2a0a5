package gateway

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/erraggy/oasguard/openapi"
)

// Watcher reloads the OpenAPI document when its file changes. A document
// that fails to load or compile leaves the active engine in place.
type Watcher struct {
	cfg    *Config
	store  *Store
	logger openapi.Logger
	fsw    *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
	// onReload is called after every reload attempt, for tests
	onReload func(error)
}

// NewWatcher watches the directory of cfg.Spec. Editors often replace a
// file instead of writing it, so the directory is watched and events are
// filtered by name.
func NewWatcher(cfg *Config, store *Store, logger openapi.Logger) (*Watcher, error) {
	if logger == nil {
		logger = openapi.NopLogger{}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("gateway: creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(cfg.Spec)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("gateway: watching %s: %w", cfg.Spec, err)
	}
	return &Watcher{cfg: cfg, store: store, logger: logger, fsw: fsw}, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	name := filepath.Clean(w.cfg.Spec)
	w.logger.Info("watching OpenAPI document", "path", name, "debounce", w.cfg.Reload.Debounce.String())
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || !relevant(event) {
				continue
			}
			w.logger.Debug("document changed", "path", event.Name, "op", event.Op.String())
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant drops events that do not change the content.
func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// schedule debounces bursts of events into a single reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Reload.Debounce, func() {
		err := w.Reload()
		w.mu.Lock()
		hook := w.onReload
		w.mu.Unlock()
		if hook != nil {
			hook(err)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Reload builds a new engine from the document and swaps it in.
func (w *Watcher) Reload() error {
	engine, err := LoadEngine(w.cfg, w.logger)
	if err != nil {
		w.logger.Warn("reload failed, keeping previous document", "path", w.cfg.Spec, "error", err)
		return err
	}
	old := w.store.Swap(engine)
	prev := ""
	if old != nil {
		prev = old.Title
	}
	w.logger.Info("document reloaded", "path", w.cfg.Spec, "api", engine.Title, "previous", prev)
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.stopTimer()
	if err := w.fsw.Close(); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return err
	}
	return nil
}
