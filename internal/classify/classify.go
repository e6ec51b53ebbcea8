// Package classify determines a single category for a whole directory by
// majority vote over the regular files it contains at any depth.
package classify

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"sortbox/internal/category"
	"sortbox/internal/failure"
)

// Tally summarizes the category counts found beneath a directory.
type Tally struct {
	Counts map[category.ID]int
	Files  int
}

// Ranked returns categories ordered by descending count, ties broken by ID.
func (t Tally) Ranked() []category.ID {
	out := make([]category.ID, 0, len(t.Counts))
	for id := range t.Counts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := t.Counts[out[i]], t.Counts[out[j]]
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}

// Winner returns the most frequent category, or EmptyFolders when no files
// were counted.
func (t Tally) Winner() category.ID {
	if t.Files == 0 {
		return category.EmptyFolders
	}
	return t.Ranked()[0]
}

// Classifier votes on directory categories using a lookup table.
type Classifier struct {
	table *category.Table
}

// New constructs a classifier. A nil table selects the built-in table.
func New(table *category.Table) *Classifier {
	if table == nil {
		table = category.Default()
	}
	return &Classifier{table: table}
}

// ClassifyFolder returns the majority category of the regular files beneath
// path. Directories without files return category.EmptyFolders.
func (c *Classifier) ClassifyFolder(path string) (category.ID, error) {
	tally, err := c.Tally(path)
	if err != nil {
		return "", err
	}
	return tally.Winner(), nil
}

// Tally walks path recursively and counts regular files per category.
// Symlinks and special files are ignored. Entries that disappear or cannot be
// read during the walk are skipped.
func (c *Classifier) Tally(path string) (Tally, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Tally{}, failure.Wrap(failure.ErrNotAFolder, "classify", "stat folder", path+" no longer exists", err)
		}
		return Tally{}, failure.Wrap(failure.ErrNotAFolder, "classify", "stat folder", "cannot inspect "+path, err)
	}
	if !info.IsDir() {
		return Tally{}, failure.Wrap(failure.ErrNotAFolder, "classify", "stat folder", path+" is not a directory", nil)
	}

	tally := Tally{Counts: make(map[category.ID]int)}
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		tally.Counts[c.table.ForName(d.Name())]++
		tally.Files++
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, fs.ErrNotExist) {
			return Tally{}, failure.Wrap(failure.ErrNotAFolder, "classify", "walk folder", path+" vanished during scan", walkErr)
		}
		return Tally{}, failure.Wrap(failure.ErrNotAFolder, "classify", "walk folder", "cannot read "+path, walkErr)
	}
	return tally, nil
}
