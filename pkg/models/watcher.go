package models

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/logger"
)

// Watcher observes the models root with fsnotify and triggers a full
// reconciliation after filesystem activity settles. External edits to model
// directories (manual deletes, out-of-band copies) are folded back into the
// published snapshot without polling.
type Watcher struct {
	engine   *Engine
	root     string
	debounce time.Duration

	fsw  *fsnotify.Watcher
	stop chan struct{}
	wg   sync.WaitGroup
	log  *logger.Logger
}

// NewWatcher creates a watcher over root. The root directory is created if
// missing so the watch can be established before any model is downloaded.
func NewWatcher(engine *Engine, root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating models root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}

	w := &Watcher{
		engine:   engine,
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		stop:     make(chan struct{}),
		log:      logger.WithComponent("model_watcher"),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// addTree watches root and every existing subdirectory. fsnotify watches are
// not recursive, so each model directory needs its own watch.
func (w *Watcher) addTree(root string) error {
	if err := w.fsw.Add(root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("listing %s: %w", root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(root, entry.Name())
		if err := w.fsw.Add(sub); err != nil {
			w.log.Warn("Failed to watch model directory", "dir", sub, "error", err)
		}
	}
	return nil
}

// Start begins watching. The loop runs until ctx is canceled or Close is
// called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
	w.log.Info("Watching models directory", "dir", w.root, "debounce", w.debounce)
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
			// Restart the debounce window on every event so a burst of
			// writes produces a single reconciliation.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("Filesystem watch error", "error", err)

		case <-fire:
			fire = nil
			if _, err := w.engine.ReconcileAll(ctx); err != nil {
				w.log.Error("Reconciliation after filesystem change failed", "error", err)
			}
		}
	}
}

// handleEvent keeps the watch set in sync with directory creation. New model
// directories appear when a download or manual copy starts.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(event.Name); err != nil {
		w.log.Warn("Failed to watch new directory", "dir", event.Name, "error", err)
		return
	}
	w.log.Debug("Watching new model directory", "dir", event.Name)
}

// Close stops the loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
