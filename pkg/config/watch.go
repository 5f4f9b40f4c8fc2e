package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// Watch calls onChange after the file at path is written or replaced.
// The parent directory is watched so that atomic rename-over saves are
// seen. Blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func()) error {
	watcher, err := openWatcher(path)
	if err != nil {
		return err
	}
	defer watcher.Close()
	watchEvents(ctx, watcher, filepath.Clean(path), logger, onChange)
	return nil
}

// openWatcher registers the directory holding path.
func openWatcher(path string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	dir := filepath.Dir(filepath.Clean(path))
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return watcher, nil
}

func watchEvents(ctx context.Context, watcher *fsnotify.Watcher, target string, logger *slog.Logger, onChange func()) {
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(watchDebounce, onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
