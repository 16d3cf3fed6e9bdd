// Package audit models the append-only ingest run log. Every loader execution
// produces exactly one Run, whether it succeeded or failed; rows are never
// updated or deleted.
package audit

import (
	"context"
	"time"
)

// Status values recorded in the log.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Table is the name of the ingest run log table.
const Table = "ingest_runs"

// Run is one row of the ingest run log.
type Run struct {
	TS       time.Time // UTC
	Source   string    // e.g. obdb_csv, ba_json
	Table    string    // target table
	RowCount int64
	Status   string
	Note     *string  // failure message; nil on success
	Duration *float64 // seconds; nil when unknown
}

// Store appends runs to durable storage.
type Store interface {
	AppendRun(ctx context.Context, run Run) error
}

// NewRun returns a Run stamped with the current UTC time.
func NewRun(source, table string, rows int64, status string) Run {
	return Run{TS: time.Now().UTC(), Source: source, Table: table, RowCount: rows, Status: status}
}

// Succeeded builds a success run for rows written over elapsed.
func Succeeded(source, table string, rows int64, elapsed time.Duration) Run {
	r := NewRun(source, table, rows, StatusSuccess)
	return r.WithDuration(elapsed)
}

// Failed builds a failed run carrying err's message as the note.
func Failed(source, table string, rows int64, elapsed time.Duration, err error) Run {
	r := NewRun(source, table, rows, StatusFailed)
	if err != nil {
		r = r.WithNote(err.Error())
	}
	return r.WithDuration(elapsed)
}

// WithNote returns a copy of r with the note set.
func (r Run) WithNote(note string) Run {
	r.Note = &note
	return r
}

// WithDuration returns a copy of r with the duration set in seconds.
func (r Run) WithDuration(d time.Duration) Run {
	s := d.Seconds()
	r.Duration = &s
	return r
}

// Succeeded reports whether r records a successful run.
func (r Run) Succeeded() bool { return r.Status == StatusSuccess }

// NoteOrEmpty returns the note or "".
func (r Run) NoteOrEmpty() string {
	if r.Note == nil {
		return ""
	}
	return *r.Note
}
