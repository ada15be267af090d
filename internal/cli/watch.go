package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/scheduler"
)

// Watch feeds the contents of path into the active group's input every time
// the file is written and prints each settled result to w. It returns when
// ctx is done.
func Watch(ctx context.Context, wb *stepwise.Workbench, path string, w io.Writer, logger *slog.Logger) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched instead.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	var mu sync.Mutex
	wb.Subscribe(func(p scheduler.Published) {
		if ctx.Err() != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		tui.PrintResult(w, p)
	})

	if err := loadInput(wb, path); err != nil {
		return err
	}
	if !wb.Flush(ctx) {
		if _, err := wb.RunNow(ctx); err != nil {
			return err
		}
	}

	mu.Lock()
	printSystemMessage(w, "Watching %s for changes...", path)
	mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("input changed", "event", event.Op.String())
			if err := loadInput(wb, path); err != nil {
				logger.Warn("reload input failed", "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}

func loadInput(wb *stepwise.Workbench, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return wb.SetInput(string(data))
}
