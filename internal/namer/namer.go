// Package namer picks destination names that never collide with existing
// entries by probing numeric suffixes.
package namer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"sortbox/internal/category"
)

// Resolve returns destDir/sourceName when that entry does not exist. Otherwise
// it probes stem_1.ext, stem_2.ext, ... and returns the first free candidate.
// There is no upper bound on the probe. The result is not reserved: another
// writer may claim it before the caller moves into it.
func Resolve(sourceName, destDir string) (string, error) {
	name := filepath.Base(sourceName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("resolve name: invalid source name %q", sourceName)
	}

	candidate := filepath.Join(destDir, name)
	free, err := isFree(candidate)
	if err != nil {
		return "", err
	}
	if free {
		return candidate, nil
	}

	stem, ext := Split(name)
	for attempt := 1; ; attempt++ {
		candidate = filepath.Join(destDir, stem+"_"+strconv.Itoa(attempt)+ext)
		free, err := isFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
}

// Split separates name into stem and final suffix. Dotfiles keep their full
// name as the stem.
func Split(name string) (stem, ext string) {
	ext = category.Extension(name)
	return name[:len(name)-len(ext)], ext
}

func isFree(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("probe %s: %w", path, err)
	}
	return false, nil
}
