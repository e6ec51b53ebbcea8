package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sortbox/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The watch directory exists; the destination root does not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WatchDir = filepath.Join(base, "watch")
	cfgVal.Paths.DestinationDir = filepath.Join(base, "watch", "organized")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "info"
	cfgVal.Watch.DebounceMillis = 20

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.Paths.WatchDir, 0o755); err != nil {
		t.Fatalf("mkdir watch dir: %v", err)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithDestinationOutside places the destination root beside the watch
// directory instead of inside it.
func WithDestinationOutside() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.DestinationDir = filepath.Join(b.baseDir, "sorted")
	}
}

// WithPartitionByYear enables year partitioning.
func WithPartitionByYear() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.PartitionByYear = true
	}
}

// WithIgnorePatterns replaces the ignore globs.
func WithIgnorePatterns(patterns ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.IgnorePatterns = append([]string(nil), patterns...)
	}
}

// WithCategoryOverrides sets [categories] overrides.
func WithCategoryOverrides(overrides map[string]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Categories = overrides
	}
}

// WithHistoryDisabled turns the journal off.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
