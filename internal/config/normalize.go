package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganize()
	c.normalizeCategories()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WatchDir) == "" {
		c.Paths.WatchDir = lookupEnv(envWatchDir, defaultWatchDir)
	}
	if c.Paths.WatchDir, err = expandPath(strings.TrimSpace(c.Paths.WatchDir)); err != nil {
		return fmt.Errorf("paths.watch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DestinationDir) == "" {
		c.Paths.DestinationDir = lookupEnv(envDestinationDir, filepath.Join(c.Paths.WatchDir, defaultDestinationName))
	}
	if c.Paths.DestinationDir, err = expandPath(strings.TrimSpace(c.Paths.DestinationDir)); err != nil {
		return fmt.Errorf("paths.destination_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganize() {
	patterns := make([]string, 0, len(c.Organize.IgnorePatterns))
	seen := make(map[string]struct{}, len(c.Organize.IgnorePatterns))
	for _, pattern := range c.Organize.IgnorePatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if _, dup := seen[pattern]; dup {
			continue
		}
		seen[pattern] = struct{}{}
		patterns = append(patterns, pattern)
	}
	c.Organize.IgnorePatterns = patterns
}

func (c *Config) normalizeCategories() {
	if len(c.Categories) == 0 {
		c.Categories = nil
		return
	}
	cleaned := make(map[string]string, len(c.Categories))
	for ext, id := range c.Categories {
		cleaned[strings.TrimSpace(ext)] = strings.TrimSpace(id)
	}
	c.Categories = cleaned
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = strings.ToLower(lookupEnv(envLogLevel, defaultLogLevel))
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func lookupEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}
