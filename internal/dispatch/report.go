package dispatch

import (
	"time"

	"sortbox/internal/category"
	"sortbox/internal/failure"
	"sortbox/internal/history"
)

// Outcome describes what happened to one watch-dir entry.
type Outcome struct {
	Source      string
	Destination string
	Category    category.ID
	Kind        history.Kind
	Status      history.Status
	// Reason explains a skip that carries no error, such as a symlink.
	Reason string
	Err    error
}

// Report summarizes one dispatch pass.
type Report struct {
	DispatchID string
	Trigger    string
	Moved      []Outcome
	Skipped    []Outcome
	// Failed holds destination failures and partial moves.
	Failed  []Outcome
	Elapsed time.Duration
}

// Empty reports whether the pass found nothing to do.
func (r Report) Empty() bool {
	return len(r.Moved) == 0 && len(r.Skipped) == 0 && len(r.Failed) == 0
}

// Outcomes returns every outcome in the order moved, skipped, failed.
func (r Report) Outcomes() []Outcome {
	out := make([]Outcome, 0, len(r.Moved)+len(r.Skipped)+len(r.Failed))
	out = append(out, r.Moved...)
	out = append(out, r.Skipped...)
	return append(out, r.Failed...)
}

func (r *Report) add(o Outcome) {
	switch o.Status {
	case history.StatusMoved:
		r.Moved = append(r.Moved, o)
	case history.StatusSkipped:
		r.Skipped = append(r.Skipped, o)
	default:
		r.Failed = append(r.Failed, o)
	}
}

func (o Outcome) entry(dispatchID string) history.Entry {
	entry := history.Entry{
		DispatchID:  dispatchID,
		Source:      o.Source,
		Destination: o.Destination,
		Category:    o.Category.String(),
		Kind:        o.Kind,
		Status:      o.Status,
	}
	switch {
	case o.Err != nil:
		entry.ErrorKind = failure.Kind(o.Err)
		entry.Error = o.Err.Error()
	case o.Reason != "":
		entry.Error = o.Reason
	}
	return entry
}

// Planned is one decision produced by Plan without touching the filesystem.
type Planned struct {
	Source   string       `json:"source"`
	Kind     history.Kind `json:"kind"`
	Category category.ID  `json:"category,omitempty"`
	// DestinationDir is the category directory the entry would land in.
	DestinationDir string `json:"destination_dir,omitempty"`
	// Skip is non-empty when the entry would be left in place.
	Skip string `json:"skip,omitempty"`
}
