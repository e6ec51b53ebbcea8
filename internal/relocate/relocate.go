// Package relocate moves a watch-dir entry into its category directory under
// a collision-free name, falling back to a verified copy when the destination
// is on another filesystem.
package relocate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"sortbox/internal/category"
	"sortbox/internal/failure"
	"sortbox/internal/fileutil"
	"sortbox/internal/logging"
	"sortbox/internal/namer"
)

// Options configures a Relocator.
type Options struct {
	PartitionByYear bool
	// Now supplies the clock used for year partitioning. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Relocator performs single-item moves. It holds no per-move state and is safe
// for concurrent use, though callers serialize moves into the same destination
// to keep name resolution meaningful.
type Relocator struct {
	partitionByYear bool
	now             func() time.Time
	logger          *slog.Logger

	rename    func(oldpath, newpath string) error
	removeAll func(path string) error
}

// New constructs a Relocator.
func New(opts Options) *Relocator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Relocator{
		partitionByYear: opts.PartitionByYear,
		now:             now,
		logger:          logging.NewComponentLogger(opts.Logger, "relocate"),
		rename:          os.Rename,
		removeAll:       os.RemoveAll,
	}
}

// DestinationDir returns destRoot/category, plus the current year when
// partitioning is enabled.
func (r *Relocator) DestinationDir(destRoot string, cat category.ID) string {
	dir := filepath.Join(destRoot, filepath.FromSlash(cat.String()))
	if r.partitionByYear {
		dir = filepath.Join(dir, strconv.Itoa(r.now().Year()))
	}
	return dir
}

// Relocate moves source into its category directory beneath destRoot and
// returns the final path. The category directory is created when missing and
// an existing entry is never overwritten.
//
// On ErrPartialMove the returned path is the verified copy. A file source is
// still in place as well. A directory source may be partly deleted, since
// removal stops at the first entry it cannot delete; the copy is complete.
func (r *Relocator) Relocate(ctx context.Context, source, destRoot string, cat category.ID) (string, error) {
	logger := logging.WithContext(ctx, r.logger)

	info, err := os.Lstat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", failure.Wrap(failure.ErrSourceVanished, "relocate", "stat source", source, err)
		}
		return "", failure.Wrap(failure.ErrDestinationUnavailable, "relocate", "stat source", source, err)
	}

	destDir := r.DestinationDir(destRoot, cat)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", failure.Wrap(failure.ErrDestinationUnavailable, "relocate", "create category directory", destDir, err)
	}

	target, err := namer.Resolve(filepath.Base(source), destDir)
	if err != nil {
		return "", failure.Wrap(failure.ErrDestinationUnavailable, "relocate", "resolve name", destDir, err)
	}

	err = r.rename(source, target)
	switch {
	case err == nil:
		logger.Debug("entry renamed",
			logging.String(logging.FieldDestination, target),
			logging.String(logging.FieldEventType, "relocate_rename"),
		)
		return target, nil
	case errors.Is(err, unix.EXDEV):
		logger.Info("destination on another filesystem; copying",
			logging.String(logging.FieldDestination, target),
			logging.String(logging.FieldEventType, "relocate_cross_device"),
		)
		return r.copyAcross(logger, source, target, info)
	case sourceGone(source):
		return "", failure.Wrap(failure.ErrSourceVanished, "relocate", "rename", source, err)
	default:
		return "", failure.Wrap(failure.ErrDestinationUnavailable, "relocate", "rename", target, err)
	}
}

func (r *Relocator) copyAcross(logger *slog.Logger, source, target string, info fs.FileInfo) (string, error) {
	started := time.Now()
	if err := copyEntry(source, target, info); err != nil {
		if cleanupErr := os.RemoveAll(target); cleanupErr != nil {
			logger.Debug("partial copy cleanup failed",
				logging.String(logging.FieldDestination, target),
				logging.Error(cleanupErr),
			)
		}
		if sourceGone(source) {
			return "", failure.Wrap(failure.ErrSourceVanished, "relocate", "copy", source, err)
		}
		return "", failure.Wrap(failure.ErrDestinationUnavailable, "relocate", "copy", target, err)
	}

	if err := r.removeAll(source); err != nil {
		return target, failure.Wrap(failure.ErrPartialMove, "relocate", "remove source", fmt.Sprintf("%s (copy at %s)", source, target), err)
	}
	logger.Debug("cross-device copy complete",
		logging.String(logging.FieldDestination, target),
		logging.Duration("elapsed", time.Since(started)),
	)
	return target, nil
}

func copyEntry(source, target string, info fs.FileInfo) error {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		if err := fileutil.CopyTree(source, target); err != nil {
			return err
		}
		return fileutil.VerifyTree(source, target)
	case mode.IsRegular():
		return fileutil.CopyFileVerified(source, target)
	case mode&fs.ModeSymlink != 0:
		link, err := os.Readlink(source)
		if err != nil {
			return err
		}
		return os.Symlink(link, target)
	default:
		return fmt.Errorf("unsupported file type %s", mode.Type())
	}
}

func sourceGone(source string) bool {
	_, err := os.Lstat(source)
	return errors.Is(err, fs.ErrNotExist)
}
