package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of one dispatched item.
type Status string

const (
	StatusMoved   Status = "moved"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
	KindOther  Kind = "other"
)

// Entry is one journaled outcome.
type Entry struct {
	ID          int64     `json:"id"`
	DispatchID  string    `json:"dispatch_id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination,omitempty"`
	Category    string    `json:"category,omitempty"`
	Kind        Kind      `json:"kind"`
	Status      Status    `json:"status"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryCount is one row of CountByCategory.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const entryColumns = "id, dispatch_id, source, destination, category, kind, status, error_kind, error, created_at"

// Record appends entry to the journal. A zero CreatedAt is stamped with the
// current time.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	ctx = orBackground(ctx)
	if strings.TrimSpace(entry.Source) == "" {
		return fmt.Errorf("history record: source is required")
	}
	if entry.Status == "" {
		return fmt.Errorf("history record: status is required")
	}
	if entry.Kind == "" {
		entry.Kind = KindOther
	}
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO moves (dispatch_id, source, destination, category, kind, status, error_kind, error, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.DispatchID,
			entry.Source,
			entry.Destination,
			entry.Category,
			string(entry.Kind),
			string(entry.Status),
			entry.ErrorKind,
			entry.Error,
			created.UTC().Format(timeLayout),
		)
		return err
	})
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	ctx = orBackground(ctx)
	query := "SELECT " + entryColumns + " FROM moves ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryEntries(ctx, query, args...)
}

// ByDispatch returns every entry recorded for one dispatch pass in insertion order.
func (s *Store) ByDispatch(ctx context.Context, dispatchID string) ([]Entry, error) {
	ctx = orBackground(ctx)
	return s.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM moves WHERE dispatch_id = ? ORDER BY id ASC",
		dispatchID,
	)
}

// CountByCategory totals moved entries per category, largest first.
func (s *Store) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	ctx = orBackground(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(1) FROM moves
		 WHERE status IN (?, ?) AND category != ''
		 GROUP BY category ORDER BY COUNT(1) DESC, category ASC`,
		string(StatusMoved), string(StatusPartial),
	)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var row CategoryCount
		if err := rows.Scan(&row.Category, &row.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PruneBefore deletes entries created before cutoff and returns how many were removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = orBackground(ctx)
	var removed int64
	err := withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM moves WHERE created_at < ?", cutoff.UTC().Format(timeLayout))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return removed, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry   Entry
		kind    string
		status  string
		created string
	)
	if err := rows.Scan(
		&entry.ID,
		&entry.DispatchID,
		&entry.Source,
		&entry.Destination,
		&entry.Category,
		&kind,
		&status,
		&entry.ErrorKind,
		&entry.Error,
		&created,
	); err != nil {
		return Entry{}, fmt.Errorf("scan history entry: %w", err)
	}
	entry.Kind = Kind(kind)
	entry.Status = Status(status)
	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	entry.CreatedAt = ts
	return entry, nil
}
