package category

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ID is a slash-delimited relative category path such as "media/audio".
type ID string

const (
	// Uncategorized is returned for extensions missing from the table.
	Uncategorized ID = "uncategorized"
	// EmptyFolders receives directories that contain no regular files.
	EmptyFolders ID = "empty_folders"
	// NoExtension is the table key for names without any extension.
	NoExtension = "noname"
)

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Segments splits the category into its path segments.
func (id ID) Segments() []string {
	return strings.Split(string(id), "/")
}

// ParseID validates a category path. Categories must be relative, non-empty and
// free of "." or ".." segments so they always resolve beneath a destination root.
func ParseID(value string) (ID, error) {
	trimmed := strings.Trim(strings.TrimSpace(value), "/")
	if trimmed == "" {
		return "", fmt.Errorf("category %q is empty", value)
	}
	if strings.Contains(trimmed, "\\") {
		return "", fmt.Errorf("category %q must use forward slashes", value)
	}
	for _, segment := range strings.Split(trimmed, "/") {
		switch strings.TrimSpace(segment) {
		case "":
			return "", fmt.Errorf("category %q has an empty segment", value)
		case ".", "..":
			return "", fmt.Errorf("category %q must not contain relative segments", value)
		}
	}
	return ID(path.Clean(trimmed)), nil
}

// Entry pairs a table key with its category.
type Entry struct {
	Extension string `json:"extension"`
	Category  ID     `json:"category"`
}

// Table is an immutable extension lookup. The zero value is not usable; obtain
// one from Default or WithOverrides.
type Table struct {
	entries  map[string]ID
	compound []string
}

var defaultTable = newTable(builtin)

// Default returns the built-in process-wide table.
func Default() *Table {
	return defaultTable
}

func newTable(src map[string]ID) *Table {
	entries := make(map[string]ID, len(src))
	var compound []string
	for key, id := range src {
		entries[key] = id
		if strings.Count(key, ".") > 1 {
			compound = append(compound, key)
		}
	}
	// Longest compound suffix wins.
	sort.Slice(compound, func(i, j int) bool {
		if len(compound[i]) != len(compound[j]) {
			return len(compound[i]) > len(compound[j])
		}
		return compound[i] < compound[j]
	})
	return &Table{entries: entries, compound: compound}
}

// WithOverrides returns a new table combining t with the provided extension to
// category overrides. The receiver is left untouched.
func (t *Table) WithOverrides(overrides map[string]string) (*Table, error) {
	if len(overrides) == 0 {
		return t, nil
	}
	merged := make(map[string]ID, len(t.entries)+len(overrides))
	for key, id := range t.entries {
		merged[key] = id
	}
	for rawKey, rawID := range overrides {
		key := NormalizeExtension(rawKey)
		if key == "." {
			return nil, fmt.Errorf("category override %q: extension is empty", rawKey)
		}
		id, err := ParseID(rawID)
		if err != nil {
			return nil, fmt.Errorf("category override %q: %w", rawKey, err)
		}
		merged[key] = id
	}
	return newTable(merged), nil
}

// NormalizeExtension lower-cases an extension and ensures a leading dot. Empty
// input and the NoExtension sentinel normalize to NoExtension.
func NormalizeExtension(ext string) string {
	trimmed := strings.TrimSpace(ext)
	if trimmed == "" {
		return NoExtension
	}
	lowered := cases.Lower(language.Und).String(trimmed)
	if lowered == NoExtension {
		return NoExtension
	}
	if !strings.HasPrefix(lowered, ".") {
		lowered = "." + lowered
	}
	return lowered
}

// Lookup returns the category for an extension. Misses map to Uncategorized.
func (t *Table) Lookup(ext string) ID {
	if id, ok := t.entries[NormalizeExtension(ext)]; ok {
		return id
	}
	return Uncategorized
}

// ForName classifies a file name. Compound extensions present in the table
// (".tar.gz") take precedence over the final suffix, and dotfiles such as
// ".bashrc" count as having no extension.
func (t *Table) ForName(name string) ID {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if len(t.compound) > 0 {
		lowered := cases.Lower(language.Und).String(base)
		for _, key := range t.compound {
			if strings.HasSuffix(lowered, key) && len(lowered) > len(key) {
				return t.entries[key]
			}
		}
	}
	return t.Lookup(Extension(base))
}

// Extension returns the final suffix of name including the dot, or "" when the
// name has none. A leading dot alone does not start an extension.
func Extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx:]
}

// Entries returns the table sorted by extension.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for key, id := range t.entries {
		out = append(out, Entry{Extension: key, Category: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Extension < out[j].Extension })
	return out
}

// Categories returns the distinct categories in the table plus the reserved
// fallbacks, sorted.
func (t *Table) Categories() []ID {
	seen := map[ID]struct{}{Uncategorized: {}, EmptyFolders: {}}
	for _, id := range t.entries {
		seen[id] = struct{}{}
	}
	out := make([]ID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len reports the number of extension keys.
func (t *Table) Len() int {
	return len(t.entries)
}
