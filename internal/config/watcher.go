package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watcherDebounce = 500 * time.Millisecond

// Watch watches the settings file at path and calls onChange with the
// reloaded File after each change. The parent directory is watched so that
// editors which replace the file by rename are picked up.
// It blocks until the context is cancelled; once it returns, onChange is
// not running and will not be called again.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*File)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	logger.Debug("watching settings file for changes", "path", path)

	target := filepath.Clean(path)
	var debounceTimer *time.Timer

	// mu serialises reload callbacks against shutdown.
	var mu sync.Mutex
	stopped := false
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Lock()
		stopped = true
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("settings file changed", "file", event.Name, "op", event.Op)

			// Debounce: reset timer on each event
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watcherDebounce, func() {
				mu.Lock()
				defer mu.Unlock()
				if stopped || ctx.Err() != nil {
					return
				}
				f, err := Load(path)
				if err != nil {
					logger.Error("settings reload failed", "error", err)
					return
				}
				onChange(f)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("file watcher error", "error", err)
		}
	}
}
