package builtin

import (
	"brewetl/internal/frame"
	"brewetl/internal/transformer"
)

// NonEmpty fails when the frame has no rows.
type NonEmpty struct {
	Context string
}

// Apply implements transformer.Transformer.
func (c NonEmpty) Apply(f *frame.Frame) (*frame.Frame, error) {
	if f.Empty() {
		return nil, &transformer.ValidationError{Context: c.Context, Check: transformer.CheckNonEmpty}
	}
	return f, nil
}
