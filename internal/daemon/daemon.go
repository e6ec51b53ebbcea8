package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"sortbox/internal/config"
	"sortbox/internal/dispatch"
	"sortbox/internal/history"
	"sortbox/internal/logging"
	"sortbox/internal/watcher"
)

// Daemon runs one watch session: it holds the watch-root lock, feeds watcher
// events to the dispatcher and keeps running totals.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *history.Store
	dispatcher *dispatch.Dispatcher
	watcher    *watcher.Watcher
	logPath    string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	sweep   func(ctx context.Context)

	statsMu sync.Mutex
	stats   Stats
}

// Stats accumulates dispatch results for the current process.
type Stats struct {
	Passes       int
	Moved        int
	Skipped      int
	Failed       int
	LastDispatch time.Time
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	WatchDir       string
	DestinationDir string
	LockFilePath   string
	HistoryPath    string
	LogPath        string
	Stats          Stats
}

// New constructs a daemon. store may be nil when history is disabled.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	var journal dispatch.Journal
	if store != nil {
		journal = store
	}
	dispatcher, err := dispatch.NewFromConfig(cfg, journal, logger)
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	d := &Daemon{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		dispatcher: dispatcher,
		logPath:    filepath.Join(cfg.Paths.LogDir, "sortbox.log"),
		lockPath:   LockPath(cfg),
	}
	d.watcher = watcher.New(dispatcher.WatchDir(), watcher.Options{
		Recursive: cfg.Watch.Recursive,
		Debounce:  cfg.DebounceInterval(),
		Exclude:   []string{dispatcher.DestinationRoot()},
	}, d.handleChange, logger)
	d.sweep = func(ctx context.Context) { d.handleChange(ctx, dispatcher.WatchDir()) }
	return d, nil
}

// Start takes the watch-root lock, optionally sweeps existing entries and
// begins watching. The lock is released if the watch cannot be established.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	info, err := os.Stat(d.cfg.Paths.WatchDir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory %s is not a directory", d.cfg.Paths.WatchDir)
	}

	lock, err := TryLockRoot(d.cfg)
	if err != nil {
		return err
	}
	d.lock = lock

	// The watcher goes first so entries arriving during the sweep still
	// trigger a pass; the dispatcher serializes the two.
	runCtx, cancel := context.WithCancel(ctx)
	if err := d.watcher.Start(runCtx); err != nil {
		cancel()
		d.releaseLock()
		return fmt.Errorf("start watcher: %w", err)
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("sortbox watch started",
		logging.String("watch_dir", d.cfg.Paths.WatchDir),
		logging.String("destination_dir", d.cfg.Paths.DestinationDir),
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldEventType, "daemon_started"),
	)

	if d.cfg.Organize.SweepOnStart {
		d.logger.Info("sweeping existing entries", logging.String(logging.FieldEventType, "sweep_started"))
		d.sweep(runCtx)
	}
	return nil
}

// Stop stops watching, waits for the in-flight dispatch and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.watcher.Stop()
	d.releaseLock()
	d.running.Store(false)

	stats := d.Stats()
	d.logger.Info("sortbox watch stopped",
		logging.Int("passes", stats.Passes),
		logging.Int("moved", stats.Moved),
		logging.Int("skipped", stats.Skipped),
		logging.Int("failed", stats.Failed),
		logging.String(logging.FieldEventType, "daemon_stopped"),
	)
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// LogPath returns the path to the current log pointer.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Stats returns a copy of the running totals.
func (d *Daemon) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:        d.running.Load(),
		WatchDir:       d.dispatcher.WatchDir(),
		DestinationDir: d.dispatcher.DestinationRoot(),
		LockFilePath:   d.lockPath,
		LogPath:        d.logPath,
		Stats:          d.Stats(),
	}
	if d.store != nil {
		status.HistoryPath = d.store.Path()
	}
	return status
}

func (d *Daemon) handleChange(ctx context.Context, changed string) {
	report, err := d.dispatcher.OnDirectoryChanged(ctx, changed)

	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.stats.Passes++
	d.stats.LastDispatch = time.Now()
	if err != nil {
		// Already logged by the dispatcher; the next event retries.
		return
	}
	d.stats.Moved += len(report.Moved)
	d.stats.Skipped += len(report.Skipped)
	d.stats.Failed += len(report.Failed)
}

func (d *Daemon) releaseLock() {
	if d.lock == nil {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release watch lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no sortbox process is running"),
		)
	}
	d.lock = nil
}
