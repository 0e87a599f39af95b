package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

// DefaultDebounce coalesces the burst of events an editor save produces
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc receives a freshly parsed dataset
type ReloadFunc func(entities []nodecloud.Entity)

// Watcher reloads a dataset file when it changes on disk
type Watcher struct {
	path     string
	debounce time.Duration
	onReload ReloadFunc
	onError  func(error)
	log      *zap.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher watches path. The parent directory is watched so that editors
// that save by rename are still picked up.
func NewWatcher(path string, onReload ReloadFunc, log *zap.Logger) (*Watcher, error) {
	if _, err := FormatOf(path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onReload: onReload,
		log:      log,
		watcher:  fw,
	}, nil
}

// SetDebounce changes the quiet period before a reload
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// OnError sets a callback for reload failures. They are logged either way.
func (w *Watcher) OnError(fn func(error)) {
	w.onError = fn
}

// Run delivers reloads until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
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
			pending = true
			debounce.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("dataset watcher error", zap.Error(err))

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	entities, err := Load(w.path)
	if err != nil {
		w.log.Warn("dataset reload failed", zap.String("path", w.path), zap.Error(err))
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.log.Info("dataset reloaded", zap.String("path", w.path), zap.Int("entities", len(entities)))
	if w.onReload != nil {
		w.onReload(entities)
	}
}
