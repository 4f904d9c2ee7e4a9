// Package watch re-runs a callback when a single file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// File calls fn each time path is written, created or renamed into place,
// at most once per debounce window. The parent directory is watched so
// editors that replace the file atomically are still seen. File blocks
// until ctx is done and then returns nil. Errors from fn are logged and
// watching continues.
func File(ctx context.Context, path string, debounce time.Duration, fn func() error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}

			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			slog.Warn("watch error", "path", abs, "error", err)

		case <-timer.C:
			slog.Debug("file changed", "path", abs)

			if err := fn(); err != nil {
				slog.Warn("watch callback failed", "path", abs, "error", err)
			}
		}
	}
}
