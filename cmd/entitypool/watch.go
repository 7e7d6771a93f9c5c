package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/l1jgo/entitypool/internal/config"
	"go.uber.org/zap"
)

// watcher signals notify when a script or the layout file changes. Bursts of
// editor writes collapse into one signal after the debounce delay.
type watcher struct {
	fs       *fsnotify.Watcher
	layout   string
	debounce time.Duration
	notify   chan<- struct{}
	log      *zap.Logger
}

func newWatcher(cfg config.PoolConfig, notify chan<- struct{}, log *zap.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	layout, err := filepath.Abs(cfg.Layout)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	// fsnotify watches directories, not files, reliably across editors.
	dirs := []string{
		filepath.Dir(layout),
		cfg.ScriptsDir,
		filepath.Join(cfg.ScriptsDir, "lib"),
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Debug("not watching directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	if len(fsw.WatchList()) == 0 {
		fsw.Close()
		return nil, fmt.Errorf("no watchable directory among %v", dirs)
	}

	return &watcher{
		fs:       fsw,
		layout:   layout,
		debounce: 300 * time.Millisecond,
		notify:   notify,
		log:      log,
	}, nil
}

// Run blocks until ctx is cancelled.
func (w *watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("change detected", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case <-timer.C:
			select {
			case w.notify <- struct{}{}:
			default: // a reload is already pending
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if filepath.Ext(ev.Name) == ".lua" {
		return true
	}
	abs, err := filepath.Abs(ev.Name)
	return err == nil && abs == w.layout
}
