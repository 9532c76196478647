package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PolicyReloader is implemented by anything that can re-read its policy.
type PolicyReloader interface {
	ReloadPolicy() error
}

// Reloader watches policy files for changes and triggers hot-reload.
//
// The parent directory is watched rather than the file, so editors that
// save by renaming a temporary file over the original are still seen.
type Reloader struct {
	watcher  *fsnotify.Watcher
	target   PolicyReloader
	log      *slog.Logger
	files    map[string]bool
	debounce time.Duration
}

// NewReloader creates a file watcher for the given paths. Empty paths and
// paths whose directory does not exist are skipped.
func NewReloader(target PolicyReloader, log *slog.Logger, paths ...string) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		dir := filepath.Dir(p)
		if _, err := os.Stat(dir); err != nil {
			log.Warn("policy directory not found, not watching", "path", p)
			continue
		}
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
			}
			dirs[dir] = true
		}
		files[p] = true
	}

	return &Reloader{
		watcher:  watcher,
		target:   target,
		log:      log,
		files:    files,
		debounce: 500 * time.Millisecond,
	}, nil
}

// Run watches for file changes and reloads policy. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait after the last write before reloading.
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !r.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(r.debounce, func() {
					if err := r.target.ReloadPolicy(); err != nil {
						r.log.Error("hot-reload failed", "file", event.Name, "error", err)
					} else {
						r.log.Debug("hot-reload checked policy", "file", event.Name)
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("file watcher error", "error", err)
		}
	}
}
