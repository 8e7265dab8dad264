package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andyrewlee/typeahead/internal/logging"
)

// Watcher reloads the config file when it changes and reports the new
// typeahead settings.
type Watcher struct {
	mu sync.Mutex

	watcher   *fsnotify.Watcher
	cfg       *Config
	path      string
	onChanged func(Typeahead)
	closeOnce sync.Once
	debounce  time.Duration
	pending   *time.Timer
}

// NewWatcher watches cfg's config file.
func NewWatcher(cfg *Config, onChanged func(Typeahead)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path := filepath.Clean(cfg.Paths.ConfigPath)
	// Watch the directory instead of the file: editors save by writing a temp
	// file and renaming it over the original, which drops a file watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:   watcher,
		cfg:       cfg,
		path:      path,
		onChanged: onChanged,
		debounce:  200 * time.Millisecond,
	}, nil
}

// SetDebounce changes the quiet period between a write and the reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Run processes file system events until the context is canceled or the watcher closes.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("config watcher: %v", err)
		}
	}
}

// schedule coalesces bursts of events into one reload after the debounce.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	w.pending = nil
	err := w.cfg.Reload()
	settings := w.cfg.Typeahead
	w.mu.Unlock()

	if err != nil {
		logging.Warn("config reload failed: %v", err)
		return
	}
	logging.Info("config reloaded from %s", w.path)
	if w.onChanged != nil {
		w.onChanged(settings)
	}
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.stopPending()
		err = w.watcher.Close()
	})
	return err
}
