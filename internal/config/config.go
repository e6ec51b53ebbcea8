package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"sortbox/internal/category"
	"sortbox/internal/failure"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvFileName is loaded from the config file's directory when present.
const EnvFileName = "sortbox.env"

// Paths contains directory configuration.
type Paths struct {
	WatchDir       string `toml:"watch_dir"`
	DestinationDir string `toml:"destination_dir"`
	LogDir         string `toml:"log_dir"`
	StateDir       string `toml:"state_dir"`
}

// Organize controls how entries are placed beneath the destination root.
type Organize struct {
	PartitionByYear bool     `toml:"partition_by_year"`
	IgnorePatterns  []string `toml:"ignore_patterns"`
	SweepOnStart    bool     `toml:"sweep_on_start"`
}

// Watch controls the filesystem watcher.
type Watch struct {
	Recursive      bool `toml:"recursive"`
	DebounceMillis int  `toml:"debounce_millis"`
}

// History controls the move journal.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for sortbox.
//
// Configuration sections:
//   - Paths: watched directory, destination root, log and state directories
//   - Organize: year partitioning, ignore globs, startup sweep
//   - Categories: extension overrides layered over the built-in table
//   - Watch: recursion and debounce for filesystem events
//   - History: SQLite move journal
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths             `toml:"paths"`
	Organize   Organize          `toml:"organize"`
	Categories map[string]string `toml:"categories"`
	Watch      Watch             `toml:"watch"`
	History    History           `toml:"history"`
	Logging    Logging           `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A sortbox.env file next to the
// resolved config path is loaded first without overriding variables already
// set in the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadEnvFile(filepath.Join(filepath.Dir(resolvedPath), EnvFileName)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "parse", resolvedPath, errors.New(strict.String()))
			}
			return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "normalize", "", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, failure.Wrap(failure.ErrConfiguration, "config", "validate", "", err)
	}

	return &cfg, resolvedPath, exists, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return failure.Wrap(failure.ErrConfiguration, "config", "load env file", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sortbox.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. The watch
// directory is never created here; a missing watch target is reported when a
// session starts.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CategoryTable returns the built-in table with [categories] overrides applied.
func (c *Config) CategoryTable() (*category.Table, error) {
	if len(c.Categories) == 0 {
		return category.Default(), nil
	}
	table, err := category.Default().WithOverrides(c.Categories)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	return table, nil
}

// DebounceInterval returns watch.debounce_millis as a duration.
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.Watch.DebounceMillis) * time.Millisecond
}

// HistoryPath is the SQLite journal location inside the state directory.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// PIDPath is the pid file written by watch sessions.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "sortbox.pid")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
