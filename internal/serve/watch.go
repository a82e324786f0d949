package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceInterval absorbs the event bursts editors emit on save so
// one edit produces one run.
const debounceInterval = 300 * time.Millisecond

// WatchConfig watches the config file and calls onChange after edits
// settle. Editors that replace the file on save emit Create or Rename
// rather than Write, so all three count as a change. The watch runs
// until ctx is done; setup errors are returned immediately.
func WatchConfig(ctx context.Context, path string, onChange func(), logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch init: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("config watch add %s: %w", path, err)
	}
	logger = logger.Named("watch")
	logger.Info("watching config file", zap.String("path", path))

	go func() {
		defer watcher.Close()
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return
			case ev := <-watcher.Events:
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logger.Debug("config file changed", zap.String("op", ev.Op.String()))
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceInterval, onChange)
			case err := <-watcher.Errors:
				logger.Warn("config watch error", zap.Error(err))
			}
		}
	}()
	return nil
}
