// Package watcher turns filesystem events under one directory into debounced
// handler calls.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sortbox/internal/logging"
)

// Handler is called with the most recent changed path once a burst of events
// settles. Calls never overlap.
type Handler func(ctx context.Context, changed string)

// Options tunes a Watcher.
type Options struct {
	// Recursive watches every subdirectory, including ones created later.
	Recursive bool
	// Debounce is the quiet period required before the handler runs. Zero
	// invokes the handler for every event.
	Debounce time.Duration
	// Exclude lists directories never added in recursive mode.
	Exclude []string
}

// Watcher owns one fsnotify watcher and the goroutine that drains it.
type Watcher struct {
	dir     string
	opts    Options
	handler Handler
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a Watcher for dir. It does not touch the filesystem until
// Start.
func New(dir string, opts Options, handler Handler, logger *slog.Logger) *Watcher {
	exclude := make([]string, 0, len(opts.Exclude))
	for _, path := range opts.Exclude {
		if strings.TrimSpace(path) != "" {
			exclude = append(exclude, filepath.Clean(path))
		}
	}
	opts.Exclude = exclude
	return &Watcher{
		dir:     filepath.Clean(dir),
		opts:    opts,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "watcher"),
	}
}

// Start establishes the watch and begins delivering events. Failure to watch
// the root directory is returned; failures on subdirectories are logged.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}
	if w.handler == nil {
		return errors.New("watcher requires a handler")
	}
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fsw = fsw
	if w.opts.Recursive {
		w.addTree(w.dir, false)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop(runCtx, fsw)

	w.logger.Info("watching directory",
		logging.String("dir", w.dir),
		logging.Bool("recursive", w.opts.Recursive),
		logging.Duration("debounce", w.opts.Debounce),
		logging.String(logging.FieldEventType, "watch_started"),
	)
	return nil
}

// Stop cancels event delivery, waits for an in-flight handler call to return
// and closes the fsnotify watcher. Pending debounced events are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	fsw := w.fsw
	w.running = false
	w.cancel = nil
	w.fsw = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
	if fsw != nil {
		if err := fsw.Close(); err != nil {
			w.logger.Debug("fsnotify close failed", logging.Error(err))
		}
	}
	w.logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
}

// Running reports whether Start succeeded and Stop has not been called.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(fsw, event) {
				continue
			}
			pending = event.Name
			if w.opts.Debounce <= 0 {
				w.handler(ctx, pending)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			timerC = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "filesystem watch error", "watch_error",
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches if watching many directories"),
				logging.String(logging.FieldImpact, "some changes may be noticed late"),
				logging.Error(err),
			)
		case <-timerC:
			timerC = nil
			if ctx.Err() != nil {
				return
			}
			w.handler(ctx, pending)
		}
	}
}

// relevant filters out attribute-only changes and extends recursive watches
// to newly created directories.
func (w *Watcher) relevant(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	w.logger.Debug("filesystem event",
		logging.String("path", event.Name),
		logging.String("op", event.Op.String()),
	)
	if event.Name == w.dir && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		logging.WarnWithContext(w.logger, "watch directory removed", "watch_root_removed",
			logging.String("dir", w.dir),
			logging.String(logging.FieldErrorHint, "recreate the directory and restart the watch"),
			logging.String(logging.FieldImpact, "no further changes will be noticed"),
		)
		return false
	}
	if w.opts.Recursive && event.Has(fsnotify.Create) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			w.addTreeTo(fsw, event.Name, true)
		}
	}
	return true
}

func (w *Watcher) addTree(root string, includeRoot bool) {
	w.addTreeTo(w.fsw, root, includeRoot)
}

func (w *Watcher) addTreeTo(fsw *fsnotify.Watcher, root string, includeRoot bool) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path) {
			return fs.SkipDir
		}
		if path == root && !includeRoot {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("subdirectory not watched",
				logging.String("dir", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "watch_add_failed"),
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches"),
			)
		}
		return nil
	})
}

func (w *Watcher) excluded(path string) bool {
	for _, ex := range w.opts.Exclude {
		if path == ex {
			return true
		}
	}
	return false
}
