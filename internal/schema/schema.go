// Package schema derives column types for a frame. Types are logical; storage
// dialects map them to SQL.
package schema

import (
	"fmt"
	"strconv"

	"brewetl/internal/frame"
)

// Kind is a logical column type.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBoolean:
		return "boolean"
	default:
		return "text"
	}
}

// Column is a named, typed column.
type Column struct {
	Name string
	Kind Kind
}

// Infer returns one Column per frame column. The kind follows the Go types of
// the non-null cells: uniform int64, float64 or bool map to integer, real or
// boolean; int64 mixed with float64 widens to real; any other mix, and an
// all-null column, is text.
func Infer(f *frame.Frame) []Column {
	cols := make([]Column, len(f.Columns))
	for i, name := range f.Columns {
		cols[i] = Column{Name: name, Kind: inferKind(f.Rows, i)}
	}
	return cols
}

func inferKind(rows [][]any, col int) Kind {
	var ints, reals, bools, other int
	for _, row := range rows {
		switch row[col].(type) {
		case nil:
		case int64, int, int32:
			ints++
		case float64, float32:
			reals++
		case bool:
			bools++
		default:
			other++
		}
	}
	switch {
	case other > 0:
		return KindText
	case bools > 0 && ints+reals == 0:
		return KindBoolean
	case bools > 0:
		return KindText
	case reals > 0:
		return KindReal
	case ints > 0:
		return KindInteger
	default:
		return KindText
	}
}

// Coerce rewrites every non-null cell of f in place so its Go type matches
// cols: int64 for integer, float64 for real, bool for boolean and string for
// text. cols must be aligned with f.Columns.
func Coerce(f *frame.Frame, cols []Column) error {
	if len(cols) != len(f.Columns) {
		return fmt.Errorf("schema: %d columns for a frame of width %d", len(cols), len(f.Columns))
	}
	for _, row := range f.Rows {
		for i, c := range cols {
			v := row[i]
			if v == nil {
				continue
			}
			out, err := coerceCell(v, c.Kind)
			if err != nil {
				return fmt.Errorf("schema: column %s: %w", c.Name, err)
			}
			row[i] = out
		}
	}
	return nil
}

func coerceCell(v any, k Kind) (any, error) {
	switch k {
	case KindInteger:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		}
	case KindReal:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int32:
			return float64(x), nil
		}
	case KindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindText:
		return text(v), nil
	}
	return nil, fmt.Errorf("cannot store %T as %s", v, k)
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
