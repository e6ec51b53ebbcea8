// Package config loads, normalizes, and validates sortbox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional sortbox.env next to the
// config file, and honours environment fallbacks such as SORTBOX_WATCH_DIR.
// Extension overrides from [categories] are validated here and turned into a
// category.Table by CategoryTable.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
