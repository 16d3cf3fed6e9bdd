// Package frame holds the untyped tabular dataset that flows from the parsers
// through the checks into storage. A Frame is a list of column names plus rows
// of positional cells aligned to those columns; a nil cell is a null.
//
// Cells carry plain Go values: string, int64, float64, bool or nil. Parsers are
// responsible for producing only those types.
package frame

import (
	"fmt"

	"go.uber.org/zap"
)

// Frame is an ordered set of columns and rows. It is not safe for concurrent
// mutation.
type Frame struct {
	Columns []string
	Rows    [][]any

	index   map[string]int
	indexed bool
}

// New returns a Frame over columns and rows. Rows shorter than the column list
// are padded with nulls; longer rows are an error.
func New(columns []string, rows [][]any) (*Frame, error) {
	f := &Frame{Columns: columns, Rows: rows}
	for i, row := range rows {
		switch {
		case len(row) > len(columns):
			return nil, fmt.Errorf("frame: row %d has %d cells, want at most %d", i, len(row), len(columns))
		case len(row) < len(columns):
			padded := make([]any, len(columns))
			copy(padded, row)
			f.Rows[i] = padded
		}
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Empty reports whether the frame has no rows (mirrors a dataframe's .empty).
func (f *Frame) Empty() bool { return f.Len() == 0 }

// Index returns the position of column name, or -1. With repeated names the
// first position wins. The lookup map is built once and dropped by Rename.
func (f *Frame) Index(name string) int {
	if !f.indexed {
		f.index = make(map[string]int, len(f.Columns))
		for i, c := range f.Columns {
			if _, dup := f.index[c]; !dup {
				f.index[c] = i
			}
		}
		f.indexed = true
	}
	if i, ok := f.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool { return f.Index(name) >= 0 }

// Rename replaces the column names. The index is rebuilt lazily.
func (f *Frame) Rename(columns []string) {
	f.Columns = columns
	f.index, f.indexed = nil, false
}

// NonNull counts the non-null cells in column name. A missing column counts 0.
func (f *Frame) NonNull(name string) int {
	i := f.Index(name)
	if i < 0 {
		return 0
	}
	n := 0
	for _, row := range f.Rows {
		if row[i] != nil {
			n++
		}
	}
	return n
}

// Records returns the rows as column-keyed maps, in row order.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, 0, len(f.Rows))
	for _, row := range f.Rows {
		rec := make(map[string]any, len(f.Columns))
		for i, c := range f.Columns {
			rec[c] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// Profile logs the frame's shape and per-column non-null counts at debug
// level.
func (f *Frame) Profile(logger *zap.Logger, context string) {
	if logger == nil || !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	logger.Debug("frame shape",
		zap.String("context", context),
		zap.Int("rows", f.Len()),
		zap.Int("columns", len(f.Columns)),
	)
	for _, c := range f.Columns {
		logger.Debug("frame column",
			zap.String("context", context),
			zap.String("column", c),
			zap.Int("non_null", f.NonNull(c)),
		)
	}
}
