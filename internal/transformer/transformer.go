// Package transformer defines frame-to-frame steps run between parsing and
// loading. Built-in normalizers and checks live in the builtin subpackage.
package transformer

import "brewetl/internal/frame"

// Transformer rewrites or checks a frame. Checks return the frame unchanged
// or an error; normalizers may mutate it in place.
type Transformer interface {
	Apply(f *frame.Frame) (*frame.Frame, error)
}

// Func adapts a function to Transformer.
type Func func(f *frame.Frame) (*frame.Frame, error)

// Apply implements Transformer.
func (fn Func) Apply(f *frame.Frame) (*frame.Frame, error) { return fn(f) }

// Chain is an ordered list of transformers. Apply stops at the first error.
type Chain []Transformer

// Apply implements Transformer.
func (c Chain) Apply(f *frame.Frame) (*frame.Frame, error) {
	out := f
	for _, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
