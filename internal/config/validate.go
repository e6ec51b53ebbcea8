package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if _, err := c.CategoryTable(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WatchDir) == "" {
		return fmt.Errorf("paths.watch_dir must be set (or export %s)", envWatchDir)
	}
	if !filepath.IsAbs(c.Paths.WatchDir) {
		return fmt.Errorf("paths.watch_dir must be absolute, got %q", c.Paths.WatchDir)
	}
	if strings.TrimSpace(c.Paths.DestinationDir) == "" {
		return errors.New("paths.destination_dir must be set")
	}
	if filepath.Clean(c.Paths.DestinationDir) == filepath.Clean(c.Paths.WatchDir) {
		return errors.New("paths.destination_dir must differ from paths.watch_dir")
	}
	if isWithin(c.Paths.WatchDir, c.Paths.DestinationDir) {
		return errors.New("paths.watch_dir must not be inside paths.destination_dir")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateOrganize() error {
	for _, pattern := range c.Organize.IgnorePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("organize.ignore_patterns: invalid glob %q: %w", pattern, err)
		}
		if strings.ContainsRune(pattern, filepath.Separator) {
			return fmt.Errorf("organize.ignore_patterns: %q must match a name, not a path", pattern)
		}
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceMillis < 0 {
		return errors.New("watch.debounce_millis must not be negative")
	}
	if c.Watch.DebounceMillis > maxDebounceMillis {
		return fmt.Errorf("watch.debounce_millis must be at most %d", maxDebounceMillis)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("logging.format must be console, json, or auto, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// isWithin reports whether path equals root or lies beneath it.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
