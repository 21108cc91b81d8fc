package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"PhotoDaily/internal/domain"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reports JPEG files created or rewritten in a directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher monitors dir; a non-positive debounce uses 500ms.
func NewWatcher(dir string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dir: dir, debounce: debounce, logger: logger}
}

// Run calls handle with the path of each settled JPEG until ctx is done.
// Calls to handle are serialized.
func (w *Watcher) Run(ctx context.Context, handle func(path string)) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching folder", "dir", w.dir)

	var (
		mu       sync.Mutex
		handleMu sync.Mutex
		pending  = make(map[string]*time.Timer)
		wg       sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for name, timer := range pending {
			if timer.Stop() {
				wg.Done()
			}
			delete(pending, name)
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}

			name := event.Name
			mu.Lock()
			if timer, exists := pending[name]; exists && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			var timer *time.Timer
			timer = time.AfterFunc(w.debounce, func() {
				defer wg.Done()
				mu.Lock()
				if pending[name] == timer {
					delete(pending, name)
				}
				mu.Unlock()

				handleMu.Lock()
				defer handleMu.Unlock()
				handle(name)
			})
			pending[name] = timer
			mu.Unlock()

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return domain.IsJPEG(base)
}
