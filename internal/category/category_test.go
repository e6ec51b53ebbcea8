package category_test

import (
	"strings"
	"testing"

	"sortbox/internal/category"
)

func TestLookupKnownExtensions(t *testing.T) {
	table := category.Default()
	cases := []struct {
		ext  string
		want category.ID
	}{
		{".pdf", "pdf"},
		{".mp3", "audio"},
		{".docx", "microsoft/word"},
		{".csv", "programming/database"},
		{".c", "programming/c&c++"},
		{".odt", "text_files"},
		{".wks", "text_files"},
		{".stl", "stl"},
	}
	for _, tc := range cases {
		if got := table.Lookup(tc.ext); got != tc.want {
			t.Fatalf("Lookup(%q) = %q, want %q", tc.ext, got, tc.want)
		}
	}
}

func TestLookupIsCaseInsensitiveAndPure(t *testing.T) {
	table := category.Default()
	for _, entry := range table.Entries() {
		upper := strings.ToUpper(entry.Extension)
		first := table.Lookup(upper)
		second := table.Lookup(upper)
		if first != second {
			t.Fatalf("Lookup(%q) not stable: %q vs %q", upper, first, second)
		}
		if entry.Extension == category.NoExtension {
			continue
		}
		if first != entry.Category {
			t.Fatalf("Lookup(%q) = %q, want %q", upper, first, entry.Category)
		}
	}
}

func TestLookupMissesAndSentinel(t *testing.T) {
	table := category.Default()
	if got := table.Lookup(".nope"); got != category.Uncategorized {
		t.Fatalf("expected uncategorized for miss, got %q", got)
	}
	if got := table.Lookup(""); got != category.Uncategorized {
		t.Fatalf("expected no-extension category for empty input, got %q", got)
	}
	if got := table.Lookup(category.NoExtension); got != category.Uncategorized {
		t.Fatalf("expected sentinel lookup to resolve, got %q", got)
	}
	if got := table.Lookup("PDF"); got != "pdf" {
		t.Fatalf("expected missing dot to be tolerated, got %q", got)
	}
	if got := table.Lookup("  .Mp3 "); got != "audio" {
		t.Fatalf("expected whitespace to be trimmed, got %q", got)
	}
}

func TestForName(t *testing.T) {
	table := category.Default()
	cases := []struct {
		name string
		want category.ID
	}{
		{"report.pdf", "pdf"},
		{"Report.PDF", "pdf"},
		{"song.final.mp3", "audio"},
		{"backup.tar.gz", "compressed"},
		{"backup.TAR.GZ", "compressed"},
		{"backup.tar", "programming/database"},
		{"README", category.Uncategorized},
		{".bashrc", category.Uncategorized},
		{"trailing.", category.Uncategorized},
		{"/abs/path/photo.jpeg", "images"},
	}
	for _, tc := range cases {
		if got := table.ForName(tc.name); got != tc.want {
			t.Fatalf("ForName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"a.txt":    ".txt",
		"a.b.c":    ".c",
		".hidden":  "",
		"noext":    "",
		"dot.":     "",
		".env.bak": ".bak",
	}
	for name, want := range cases {
		if got := category.Extension(name); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestWithOverridesReturnsNewTable(t *testing.T) {
	base := category.Default()
	overridden, err := base.WithOverrides(map[string]string{
		"HEIC": "images/phone",
		".pdf": "documents/pdf",
	})
	if err != nil {
		t.Fatalf("WithOverrides: %v", err)
	}
	if got := overridden.Lookup(".heic"); got != "images/phone" {
		t.Fatalf("expected override for heic, got %q", got)
	}
	if got := overridden.Lookup(".pdf"); got != "documents/pdf" {
		t.Fatalf("expected override for pdf, got %q", got)
	}
	if got := base.Lookup(".pdf"); got != "pdf" {
		t.Fatalf("default table mutated: %q", got)
	}
	if got := base.Lookup(".heic"); got != category.Uncategorized {
		t.Fatalf("default table mutated: %q", got)
	}
}

func TestWithOverridesRejectsInvalidCategories(t *testing.T) {
	for _, bad := range []string{"", "../escape", "a//b", "a/./b", "a\\b"} {
		if _, err := category.Default().WithOverrides(map[string]string{".x": bad}); err == nil {
			t.Fatalf("expected error for category %q", bad)
		}
	}
}

func TestParseID(t *testing.T) {
	id, err := category.ParseID(" /media/audio/ ")
	if err != nil {
		t.Fatalf("ParseID: %v", err)
	}
	if id != "media/audio" {
		t.Fatalf("unexpected id %q", id)
	}
	if segs := id.Segments(); len(segs) != 2 || segs[0] != "media" || segs[1] != "audio" {
		t.Fatalf("unexpected segments %v", segs)
	}
}

func TestCategoriesIncludesReserved(t *testing.T) {
	cats := category.Default().Categories()
	var sawEmpty, sawUncategorized bool
	for i, c := range cats {
		if i > 0 && cats[i-1] >= c {
			t.Fatalf("categories not sorted/unique at %d: %v", i, cats)
		}
		switch c {
		case category.EmptyFolders:
			sawEmpty = true
		case category.Uncategorized:
			sawUncategorized = true
		}
	}
	if !sawEmpty || !sawUncategorized {
		t.Fatalf("expected reserved categories in %v", cats)
	}
}
