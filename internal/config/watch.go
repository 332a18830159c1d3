package config

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands each new,
// valid, different Config to the callback.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *log.Logger

	mu      sync.Mutex
	current Config
}

func NewWatcher(path string, current Config) *Watcher {
	return &Watcher{
		path:     ExpandHome(path),
		debounce: defaultDebounce,
		log:      logger.Named("config"),
		current:  current,
	}
}

// WithDebounce sets how long the watcher waits for writes to settle.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Current returns the last committed config.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Watch blocks until ctx is done. The parent directory is watched rather
// than the file so editors that replace the file by rename are seen.
func (w *Watcher) Watch(ctx context.Context, onChange func(Config)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir, file := filepath.Dir(w.path), filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}
	w.log.Debug("config watcher started", "dir", dir, "file", file)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() { w.reload(onChange) })
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watch error", "err", err)
		}
	}
}

func (w *Watcher) reload(onChange func(Config)) {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload rejected", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	unchanged := reflect.DeepEqual(cfg, w.current)
	if !unchanged {
		w.current = cfg
	}
	w.mu.Unlock()

	if unchanged {
		w.log.Debug("config unchanged; skipping", "path", w.path)
		return
	}
	w.log.Info("config reloaded", "path", w.path)
	onChange(cfg)
}
