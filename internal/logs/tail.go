package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Window is a batch of complete lines and the byte offset just past them.
type Window struct {
	Lines  []string
	Offset int64
}

// Filter keeps lines containing every non-empty needle.
type Filter []string

func (f Filter) match(line string) bool {
	for _, needle := range f {
		if needle != "" && !strings.Contains(line, needle) {
			return false
		}
	}
	return true
}

// Last returns up to n matching lines from the end of path. A missing file
// yields an empty window at offset zero.
func Last(path string, n int, filter Filter) (Window, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return Window{}, err
	}
	defer file.Close()

	if n <= 0 {
		offset, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Window{}, fmt.Errorf("seek log file: %w", err)
		}
		return Window{Offset: offset}, nil
	}

	ring := make([]string, n)
	count, next := 0, 0
	offset, err := scanLines(file, func(line string) {
		if !filter.match(line) {
			return
		}
		ring[next] = line
		next = (next + 1) % n
		if count < n {
			count++
		}
	})
	if err != nil {
		return Window{}, err
	}

	lines := make([]string, count)
	start := 0
	if count == n {
		start = next
	}
	for i := range count {
		lines[i] = ring[(start+i)%n]
	}
	return Window{Lines: lines, Offset: offset}, nil
}

// Since returns the matching lines written after offset. An offset beyond
// the end of the file, as after truncation, restarts from the beginning.
func Since(path string, offset int64, filter Filter) (Window, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return Window{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Window{}, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Window{}, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	consumed, err := scanLines(file, func(line string) {
		if filter.match(line) {
			lines = append(lines, line)
		}
	})
	if err != nil {
		return Window{}, err
	}
	return Window{Lines: lines, Offset: offset + consumed}, nil
}

// Follow polls path every interval and emits lines appended after offset
// until ctx is cancelled. When path is a pointer that is moved to a new file,
// reading restarts at the top of the new file.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	current, _ := os.Stat(path)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if info, err := os.Stat(path); err == nil {
			if current != nil && !os.SameFile(current, info) {
				offset = 0
			}
			current = info
		}
		window, err := Since(path, offset, filter)
		if err != nil {
			return err
		}
		for _, line := range window.Lines {
			emit(line)
		}
		offset = window.Offset

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func openLog(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}

// scanLines feeds complete lines to fn and returns the bytes consumed. A
// trailing line without a newline is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			consumed += int64(len(line))
			fn(strings.TrimRight(line, "\r\n"))
			continue
		}
		if errors.Is(err, io.EOF) {
			return consumed, nil
		}
		return consumed, fmt.Errorf("read log file: %w", err)
	}
}
