package builtin

import (
	"brewetl/internal/frame"
	"brewetl/internal/transformer"
)

// RequireColumns fails when any of Columns is absent from the frame. Missing
// names are reported in the order given.
type RequireColumns struct {
	Columns []string
	Context string
}

// Apply implements transformer.Transformer.
func (r RequireColumns) Apply(f *frame.Frame) (*frame.Frame, error) {
	var missing []string
	for _, c := range r.Columns {
		if !f.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &transformer.ValidationError{Context: r.Context, Check: transformer.CheckRequiredColumns, Columns: missing}
	}
	return f, nil
}

// NotAllNull fails when a listed column is present and has no non-null value.
// Absent columns are ignored; pair with RequireColumns to demand presence.
type NotAllNull struct {
	Columns []string
	Context string
}

// Apply implements transformer.Transformer.
func (n NotAllNull) Apply(f *frame.Frame) (*frame.Frame, error) {
	var nullOnly []string
	for _, c := range n.Columns {
		if f.Has(c) && f.NonNull(c) == 0 {
			nullOnly = append(nullOnly, c)
		}
	}
	if len(nullOnly) > 0 {
		return nil, &transformer.ValidationError{Context: n.Context, Check: transformer.CheckNotAllNull, Columns: nullOnly}
	}
	return f, nil
}
