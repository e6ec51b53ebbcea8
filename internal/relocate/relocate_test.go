package relocate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"sortbox/internal/category"
	"sortbox/internal/failure"
	"sortbox/internal/testsupport"
)

func crossDeviceRename(oldpath, newpath string) error {
	return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: unix.EXDEV}
}

func TestRelocateFileRoundTrip(t *testing.T) {
	watch := t.TempDir()
	dest := filepath.Join(t.TempDir(), "organized")
	source := filepath.Join(watch, "report.pdf")
	testsupport.WriteFile(t, source, 4096)
	want, _ := os.ReadFile(source)

	got, err := New(Options{}).Relocate(context.Background(), source, dest, "pdf")
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if got != filepath.Join(dest, "pdf", "report.pdf") {
		t.Fatalf("final path = %q", got)
	}
	testsupport.MustNotExist(t, source)
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(want) {
		t.Fatal("content changed during relocation")
	}
}

func TestRelocateCollisionsGetSuffixes(t *testing.T) {
	dest := t.TempDir()
	r := New(Options{})
	wants := []string{"report.pdf", "report_1.pdf", "report_2.pdf"}
	for _, want := range wants {
		watch := t.TempDir()
		source := filepath.Join(watch, "report.pdf")
		testsupport.WriteFile(t, source, 1)
		got, err := r.Relocate(context.Background(), source, dest, "pdf")
		if err != nil {
			t.Fatalf("Relocate: %v", err)
		}
		if got != filepath.Join(dest, "pdf", want) {
			t.Fatalf("got %q want %s", got, want)
		}
	}
}

func TestRelocateDirectoryIntact(t *testing.T) {
	watch := t.TempDir()
	dest := t.TempDir()
	mix := filepath.Join(watch, "mix")
	testsupport.WriteTree(t, mix, "a.mp3", "b.mp3", "notes.txt")

	got, err := New(Options{}).Relocate(context.Background(), mix, dest, "audio")
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	for _, name := range []string{"a.mp3", "b.mp3", "notes.txt"} {
		testsupport.MustExist(t, filepath.Join(got, name))
	}
	testsupport.MustNotExist(t, mix)
}

func TestRelocatePartitionByYear(t *testing.T) {
	watch := t.TempDir()
	dest := t.TempDir()
	source := filepath.Join(watch, "song.mp3")
	testsupport.WriteFile(t, source, 1)

	r := New(Options{
		PartitionByYear: true,
		Now:             func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	got, err := r.Relocate(context.Background(), source, dest, "audio")
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if want := filepath.Join(dest, "audio", "2024", "song.mp3"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRelocateNestedCategoryAndExistingDirectory(t *testing.T) {
	watch := t.TempDir()
	dest := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dest, "programming", "database"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := New(Options{})
	for _, name := range []string{"a.sql", "b.sql"} {
		source := filepath.Join(watch, name)
		testsupport.WriteFile(t, source, 1)
		got, err := r.Relocate(context.Background(), source, dest, category.ID("programming/database"))
		if err != nil {
			t.Fatalf("Relocate %s: %v", name, err)
		}
		if got != filepath.Join(dest, "programming", "database", name) {
			t.Fatalf("got %q", got)
		}
	}
}

func TestRelocateMissingSource(t *testing.T) {
	_, err := New(Options{}).Relocate(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), t.TempDir(), "text_files")
	if !errors.Is(err, failure.ErrSourceVanished) {
		t.Fatalf("expected ErrSourceVanished, got %v", err)
	}
}

func TestRelocateDestinationRootIsFile(t *testing.T) {
	watch := t.TempDir()
	source := filepath.Join(watch, "a.txt")
	testsupport.WriteFile(t, source, 1)
	blocker := filepath.Join(t.TempDir(), "blocker")
	testsupport.WriteFile(t, blocker, 1)

	_, err := New(Options{}).Relocate(context.Background(), source, blocker, "text_files")
	if !errors.Is(err, failure.ErrDestinationUnavailable) {
		t.Fatalf("expected ErrDestinationUnavailable, got %v", err)
	}
	testsupport.MustExist(t, source)
}

func TestRelocateRenameFailureLeavesSource(t *testing.T) {
	watch := t.TempDir()
	dest := t.TempDir()
	source := filepath.Join(watch, "a.txt")
	testsupport.WriteFile(t, source, 1)

	r := New(Options{})
	r.rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: unix.EACCES}
	}
	_, err := r.Relocate(context.Background(), source, dest, "text_files")
	if !errors.Is(err, failure.ErrDestinationUnavailable) {
		t.Fatalf("expected ErrDestinationUnavailable, got %v", err)
	}
	testsupport.MustExist(t, source)
	testsupport.MustNotExist(t, filepath.Join(dest, "text_files", "a.txt"))
}

func TestRelocateSourceVanishesDuringRename(t *testing.T) {
	watch := t.TempDir()
	source := filepath.Join(watch, "a.txt")
	testsupport.WriteFile(t, source, 1)

	r := New(Options{})
	r.rename = func(oldpath, newpath string) error {
		_ = os.Remove(oldpath)
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: unix.ENOENT}
	}
	_, err := r.Relocate(context.Background(), source, t.TempDir(), "text_files")
	if !errors.Is(err, failure.ErrSourceVanished) {
		t.Fatalf("expected ErrSourceVanished, got %v", err)
	}
}

func TestRelocateCrossDeviceFallsBackToCopy(t *testing.T) {
	watch := t.TempDir()
	dest := t.TempDir()
	file := filepath.Join(watch, "clip.mp4")
	testsupport.WriteFile(t, file, 100_000)
	dir := filepath.Join(watch, "album")
	testsupport.WriteTree(t, dir, "01.flac", "02.flac", "art/cover.jpg")

	r := New(Options{})
	r.rename = crossDeviceRename

	got, err := r.Relocate(context.Background(), file, dest, "video")
	if err != nil {
		t.Fatalf("Relocate file: %v", err)
	}
	if info := testsupport.MustExist(t, got); info.Size() != 100_000 {
		t.Fatalf("copied size = %d", info.Size())
	}
	testsupport.MustNotExist(t, file)

	got, err = r.Relocate(context.Background(), dir, dest, "audio")
	if err != nil {
		t.Fatalf("Relocate dir: %v", err)
	}
	testsupport.MustExist(t, filepath.Join(got, "art", "cover.jpg"))
	testsupport.MustNotExist(t, dir)
}

func TestRelocatePartialMoveKeepsBothCopies(t *testing.T) {
	watch := t.TempDir()
	dest := t.TempDir()
	source := filepath.Join(watch, "big.iso")
	testsupport.WriteFile(t, source, 2048)

	r := New(Options{})
	r.rename = crossDeviceRename
	r.removeAll = func(string) error { return unix.EBUSY }

	got, err := r.Relocate(context.Background(), source, dest, "disk_images")
	if !errors.Is(err, failure.ErrPartialMove) {
		t.Fatalf("expected ErrPartialMove, got %v", err)
	}
	if got != filepath.Join(dest, "disk_images", "big.iso") {
		t.Fatalf("partial move should report the copy, got %q", got)
	}
	testsupport.MustExist(t, source)
	testsupport.MustExist(t, got)
}

func TestRelocatePartialDirectoryRemovalKeepsCompleteCopy(t *testing.T) {
	watch := t.TempDir()
	dest := t.TempDir()
	dir := filepath.Join(watch, "album")
	testsupport.WriteTree(t, dir, "01.flac", "02.flac", "art/cover.jpg")

	r := New(Options{})
	r.rename = crossDeviceRename
	r.removeAll = func(path string) error {
		if err := os.Remove(filepath.Join(path, "01.flac")); err != nil {
			return err
		}
		return unix.EBUSY
	}

	got, err := r.Relocate(context.Background(), dir, dest, "audio")
	if !errors.Is(err, failure.ErrPartialMove) {
		t.Fatalf("expected ErrPartialMove, got %v", err)
	}
	for _, name := range []string{"01.flac", "02.flac", filepath.Join("art", "cover.jpg")} {
		testsupport.MustExist(t, filepath.Join(got, name))
	}
	testsupport.MustNotExist(t, filepath.Join(dir, "01.flac"))
	testsupport.MustExist(t, filepath.Join(dir, "02.flac"))
}

func TestRelocateCopyFailureRemovesPartialDestination(t *testing.T) {
	watch := t.TempDir()
	dest := t.TempDir()
	source := filepath.Join(watch, "fifo")
	if err := unix.Mkfifo(source, 0o644); err != nil {
		t.Skipf("mkfifo unsupported: %v", err)
	}

	r := New(Options{})
	r.rename = crossDeviceRename
	_, err := r.Relocate(context.Background(), source, dest, "uncategorized")
	if !errors.Is(err, failure.ErrDestinationUnavailable) {
		t.Fatalf("expected ErrDestinationUnavailable, got %v", err)
	}
	testsupport.MustExist(t, source)
	testsupport.MustNotExist(t, filepath.Join(dest, "uncategorized", "fifo"))
}
