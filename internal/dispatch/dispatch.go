package dispatch

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

	"github.com/google/uuid"

	"sortbox/internal/category"
	"sortbox/internal/classify"
	"sortbox/internal/config"
	"sortbox/internal/failure"
	"sortbox/internal/history"
	"sortbox/internal/logging"
	"sortbox/internal/relocate"
)

// Journal records dispatch outcomes. *history.Store satisfies it.
type Journal interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Options configures a Dispatcher.
type Options struct {
	WatchDir        string
	DestinationDir  string
	Table           *category.Table
	IgnorePatterns  []string
	PartitionByYear bool
	Now             func() time.Time
	Journal         Journal
	Logger          *slog.Logger
}

// Dispatcher sorts the immediate children of one watch directory.
type Dispatcher struct {
	mu sync.Mutex

	watchDir   string
	destRoot   string
	table      *category.Table
	classifier *classify.Classifier
	relocator  *relocate.Relocator
	ignore     []string
	journal    Journal
	logger     *slog.Logger
	newID      func() string
}

// New validates opts and constructs a Dispatcher.
func New(opts Options) (*Dispatcher, error) {
	watchDir, err := absClean(opts.WatchDir)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "dispatch", "watch dir", opts.WatchDir, err)
	}
	destRoot, err := absClean(opts.DestinationDir)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "dispatch", "destination dir", opts.DestinationDir, err)
	}
	if watchDir == destRoot {
		return nil, failure.Wrap(failure.ErrConfiguration, "dispatch", "destination dir", "must differ from watch dir", nil)
	}
	for _, pattern := range opts.IgnorePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, failure.Wrap(failure.ErrConfiguration, "dispatch", "ignore pattern", pattern, err)
		}
	}
	table := opts.Table
	if table == nil {
		table = category.Default()
	}
	return &Dispatcher{
		watchDir:   watchDir,
		destRoot:   destRoot,
		table:      table,
		classifier: classify.New(table),
		relocator: relocate.New(relocate.Options{
			PartitionByYear: opts.PartitionByYear,
			Now:             opts.Now,
			Logger:          opts.Logger,
		}),
		ignore:  append([]string(nil), opts.IgnorePatterns...),
		journal: opts.Journal,
		logger:  logging.NewComponentLogger(opts.Logger, "dispatch"),
		newID:   uuid.NewString,
	}, nil
}

// NewFromConfig builds a Dispatcher from a validated configuration. journal may
// be nil.
func NewFromConfig(cfg *config.Config, journal Journal, logger *slog.Logger) (*Dispatcher, error) {
	if cfg == nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "dispatch", "config", "config is required", nil)
	}
	table, err := cfg.CategoryTable()
	if err != nil {
		return nil, err
	}
	return New(Options{
		WatchDir:        cfg.Paths.WatchDir,
		DestinationDir:  cfg.Paths.DestinationDir,
		Table:           table,
		IgnorePatterns:  cfg.Organize.IgnorePatterns,
		PartitionByYear: cfg.Organize.PartitionByYear,
		Journal:         journal,
		Logger:          logger,
	})
}

// WatchDir returns the directory this dispatcher sorts.
func (d *Dispatcher) WatchDir() string { return d.watchDir }

// DestinationRoot returns the root category directories are created under.
func (d *Dispatcher) DestinationRoot() string { return d.destRoot }

// OnDirectoryChanged sorts every current child of the watch directory. changed
// names the path that triggered the pass and is only logged.
//
// The batch is never interrupted by ctx cancellation; only a failure to
// enumerate the watch directory is returned as an error.
func (d *Dispatcher) OnDirectoryChanged(ctx context.Context, changed string) (Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)
	started := time.Now()

	report := Report{DispatchID: d.newID(), Trigger: changed}
	ctx = logging.WithDispatchID(ctx, report.DispatchID)
	logger := logging.WithContext(ctx, d.logger)

	candidates, err := d.candidates(logger)
	if err != nil {
		logging.WarnWithContext(logger, "watch directory unreadable", "dispatch_enumerate_failed",
			logging.String(logging.FieldErrorHint, "check that the watch directory exists and is readable"),
			logging.String(logging.FieldImpact, "nothing sorted this pass"),
			logging.Error(err),
		)
		return report, err
	}

	for _, path := range candidates {
		outcome := d.dispatchOne(ctx, path)
		report.add(outcome)
		d.record(ctx, report.DispatchID, outcome)
	}
	report.Elapsed = time.Since(started)

	attrs := logging.Args(
		logging.String("trigger", changed),
		logging.Int("moved", len(report.Moved)),
		logging.Int("skipped", len(report.Skipped)),
		logging.Int("failed", len(report.Failed)),
		logging.Duration("elapsed", report.Elapsed),
		logging.String(logging.FieldEventType, "dispatch_complete"),
	)
	if report.Empty() {
		logger.Debug("dispatch found nothing to sort", attrs...)
	} else {
		logger.Info("dispatch complete", attrs...)
	}
	return report, nil
}

// Sweep runs a pass over the whole watch directory, for catch-up on startup.
func (d *Dispatcher) Sweep(ctx context.Context) (Report, error) {
	return d.OnDirectoryChanged(ctx, d.watchDir)
}

// Plan reports the decision each current child would receive without moving
// anything.
func (d *Dispatcher) Plan(ctx context.Context) ([]Planned, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(ctx, d.logger)
	candidates, err := d.candidates(logger)
	if err != nil {
		return nil, err
	}

	plan := make([]Planned, 0, len(candidates))
	for _, path := range candidates {
		kind, cat, skip, err := d.decide(path)
		item := Planned{Source: path, Kind: kind}
		switch {
		case err != nil:
			item.Skip = failure.Kind(err)
		case skip != "":
			item.Skip = skip
		default:
			item.Category = cat
			item.DestinationDir = d.relocator.DestinationDir(d.destRoot, cat)
		}
		plan = append(plan, item)
	}
	return plan, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, path string) Outcome {
	ctx = logging.WithItem(ctx, path)
	logger := logging.WithContext(ctx, d.logger)

	kind, cat, skip, err := d.decide(path)
	outcome := Outcome{Source: path, Kind: kind, Category: cat}
	if err != nil {
		outcome.Status = history.StatusSkipped
		outcome.Err = err
		logger.Info("entry skipped",
			logging.String(logging.FieldEventType, "dispatch_skip"),
			logging.String(logging.FieldErrorKind, failure.Kind(err)),
			logging.Error(err),
		)
		return outcome
	}
	if skip != "" {
		outcome.Status = history.StatusSkipped
		outcome.Reason = skip
		logger.Info("entry skipped",
			logging.String(logging.FieldEventType, "dispatch_skip"),
			logging.String("reason", skip),
		)
		return outcome
	}

	target, err := d.relocator.Relocate(ctx, path, d.destRoot, cat)
	outcome.Destination = target
	outcome.Err = err
	switch {
	case err == nil:
		outcome.Status = history.StatusMoved
		logger.Info("entry sorted",
			logging.String(logging.FieldCategory, cat.String()),
			logging.String(logging.FieldDestination, target),
			logging.String(logging.FieldEventType, "dispatch_moved"),
		)
	case errors.Is(err, failure.ErrPartialMove):
		outcome.Status = history.StatusPartial
		logging.ErrorWithContext(logger, "entry copied but original could not be removed", "dispatch_partial_move",
			logging.String(logging.FieldErrorHint, "remove the original by hand once the copy is confirmed"),
			logging.String("source", path),
			logging.String(logging.FieldDestination, target),
			logging.String(logging.FieldErrorKind, failure.Kind(err)),
			logging.Error(err),
		)
	case failure.Skippable(err):
		outcome.Status = history.StatusSkipped
		logger.Info("entry vanished before it could be moved",
			logging.String(logging.FieldEventType, "dispatch_skip"),
			logging.String(logging.FieldErrorKind, failure.Kind(err)),
			logging.Error(err),
		)
	default:
		outcome.Status = history.StatusFailed
		logging.WarnWithContext(logger, "entry could not be moved", "dispatch_move_failed",
			logging.String(logging.FieldCategory, cat.String()),
			logging.String(logging.FieldErrorHint, "check free space and permissions under the destination root"),
			logging.String(logging.FieldErrorKind, failure.Kind(err)),
			logging.Error(err),
		)
	}
	return outcome
}

// decide returns the kind and category for path, a skip reason for entries
// left alone, or a skippable error when the entry changed underneath us.
func (d *Dispatcher) decide(path string) (history.Kind, category.ID, string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		// Anything we cannot stat is left where it is.
		return history.KindOther, "", "", failure.Wrap(failure.ErrSourceVanished, "dispatch", "stat", path, err)
	}
	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return history.KindFile, d.table.ForName(info.Name()), "", nil
	case mode.IsDir():
		cat, err := d.classifier.ClassifyFolder(path)
		if err != nil {
			return history.KindFolder, "", "", err
		}
		return history.KindFolder, cat, "", nil
	case mode&fs.ModeSymlink != 0:
		return history.KindOther, "", "symlink", nil
	default:
		return history.KindOther, "", "special file", nil
	}
}

// candidates lists the watch directory's children in name order, minus the
// destination root, its ancestors, and ignored names.
func (d *Dispatcher) candidates(logger *slog.Logger) ([]string, error) {
	entries, err := os.ReadDir(d.watchDir)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", d.watchDir, err)
	}
	destResolved := resolvePath(d.destRoot)

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(d.watchDir, name)
		if d.holdsDestination(path, destResolved) {
			logger.Debug("destination root excluded", logging.String(logging.FieldItem, path))
			continue
		}
		if pattern, ok := d.ignored(name); ok {
			logger.Debug("entry ignored",
				logging.String(logging.FieldItem, path),
				logging.String("pattern", pattern),
			)
			continue
		}
		out = append(out, path)
	}
	return out, nil
}

func (d *Dispatcher) holdsDestination(path, destResolved string) bool {
	if isWithin(path, d.destRoot) {
		return true
	}
	return isWithin(resolvePath(path), destResolved)
}

func (d *Dispatcher) ignored(name string) (string, bool) {
	for _, pattern := range d.ignore {
		if ok, _ := filepath.Match(pattern, name); ok {
			return pattern, true
		}
	}
	return "", false
}

func (d *Dispatcher) record(ctx context.Context, dispatchID string, outcome Outcome) {
	if d.journal == nil {
		return
	}
	if err := d.journal.Record(ctx, outcome.entry(dispatchID)); err != nil {
		logging.WarnWithContext(logging.WithContext(logging.WithItem(ctx, outcome.Source), d.logger),
			"history record failed", "history_record_failed",
			logging.String(logging.FieldErrorHint, "check the state directory and history database"),
			logging.String(logging.FieldImpact, "outcome missing from history"),
			logging.Error(err),
		)
	}
}

func absClean(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// resolvePath follows symlinks in the longest existing prefix of path.
func resolvePath(path string) string {
	path = filepath.Clean(path)
	suffix := ""
	for current := path; ; {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			return filepath.Join(resolved, suffix)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		suffix = filepath.Join(filepath.Base(current), suffix)
		current = parent
	}
}

// isWithin reports whether target equals root or lies beneath it.
func isWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
