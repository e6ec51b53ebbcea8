package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"

	"sortbox/internal/config"
)

// ErrRootLocked reports that another process holds the watch-root lock.
var ErrRootLocked = errors.New("watch directory is already being organized by another sortbox process")

// LockPath returns the lock file guarding cfg's watch directory. Different
// watch roots hash to different lock files in the same state directory.
func LockPath(cfg *config.Config) string {
	root := filepath.Clean(cfg.Paths.WatchDir)
	name := "watch-" + strconv.FormatUint(xxhash.Sum64String(root), 16) + ".lock"
	return filepath.Join(cfg.Paths.StateDir, name)
}

// TryLockRoot takes the watch-root lock without blocking. The caller unlocks
// the returned lock when done. ErrRootLocked is returned when it is held
// elsewhere.
func TryLockRoot(cfg *config.Config) (*flock.Flock, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	lock := flock.New(LockPath(cfg))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrRootLocked
	}
	return lock, nil
}
