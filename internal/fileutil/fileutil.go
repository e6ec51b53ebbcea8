package fileutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/otiai10/copy"
)

// afterWrite runs between closing dst and verifying it. Tests use it to
// tamper with the written file.
var afterWrite func(dst string)

// CopyFileVerified streams src to dst, preserving the source mode and mtime.
// dst is then re-read from disk and its size and xxhash digest compared with
// what was read from src. dst is removed on any failure.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	fail := func(err error) error {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}

	srcHash := xxhash.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHash))
	if err != nil {
		return fail(err)
	}
	if written != srcInfo.Size() {
		return fail(fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written))
	}
	if err := out.Sync(); err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	if afterWrite != nil {
		afterWrite(dst)
	}

	dstSum, dstSize, err := digest(dst)
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %w", err)
	}
	if dstSize != written {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %s holds %d bytes, wrote %d", dst, dstSize, written)
	}
	if dstSum != srcHash.Sum64() {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %s does not match its source", dst)
	}
	_ = os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
	return nil
}

// CopyTree copies a directory tree from src to dst. Symlinks are recreated as
// links rather than followed, and modification times are preserved. dst must
// not exist.
func CopyTree(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("copy tree: destination %s already exists", dst)
	}
	return copy.Copy(src, dst, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
		OnDirExists: func(string, string) copy.DirExistsAction {
			return copy.Untouchable
		},
		PreserveTimes: true,
		Sync:          true,
	})
}

// VerifyTree compares every regular file beneath src against its counterpart
// beneath dst by size and xxhash digest.
func VerifyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			info, err := os.Lstat(target)
			if err != nil {
				return fmt.Errorf("verify %s: %w", rel, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("verify %s: expected directory", rel)
			}
			return nil
		case d.Type().IsRegular():
			return compareFiles(path, target)
		default:
			if _, err := os.Lstat(target); err != nil {
				return fmt.Errorf("verify %s: %w", rel, err)
			}
			return nil
		}
	})
}

func compareFiles(a, b string) error {
	sumA, sizeA, err := digest(a)
	if err != nil {
		return err
	}
	sumB, sizeB, err := digest(b)
	if err != nil {
		return err
	}
	if sizeA != sizeB {
		return fmt.Errorf("verify %s: size mismatch (%d vs %d bytes)", filepath.Base(a), sizeA, sizeB)
	}
	if sumA != sumB {
		return fmt.Errorf("verify %s: content mismatch", filepath.Base(a))
	}
	return nil
}

func digest(path string) (uint64, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, 0, err
	}
	return h.Sum64(), n, nil
}
