// Package json parses a JSON feed into a frame. Three layouts are accepted:
//
//   - a top-level array of objects: [{"id":1},{"id":2}]
//   - newline-delimited or concatenated objects: {"id":1}\n{"id":2}
//   - a single envelope object whose largest array-of-objects field holds the
//     records: {"count":2,"breweries":[{...},{...}]}
//
// Columns are ordered by first appearance across records. Integral numbers
// become int64, other numbers float64; nested objects and arrays are kept as
// compact JSON text. Object fields are read with json-iterator's Iterator so
// they keep document order.
package json

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"brewetl/internal/frame"
)

// Options configures the JSON parser.
type Options struct {
	// EnvelopeField selects the records array inside a single top-level
	// object. Empty picks the largest array of objects.
	EnvelopeField string
}

// Parser decodes JSON payloads. It keeps no state between calls.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// field is one key/value pair of an object, in document order.
type field struct {
	key string
	val any
}

// rawJSON is an undecoded nested array or object.
type rawJSON []byte

// Parse reads r fully and decodes it.
func (p *Parser) Parse(r io.Reader) (*frame.Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("json parser: read: %w", err)
	}
	return p.ParseBytes(data)
}

// ParseBytes decodes data. An input with no values yields an empty frame.
func (p *Parser) ParseBytes(data []byte) (*frame.Frame, error) {
	iter := jsoniter.ParseBytes(jsoniter.ConfigDefault, data)

	var (
		objects   [][]field
		arrayRoot bool
		b         = newBuilder()
	)
	for n := 0; ; n++ {
		next := iter.WhatIsNext()
		if next == jsoniter.InvalidValue {
			if errors.Is(iter.Error, io.EOF) {
				break
			}
			if iter.Error != nil {
				return nil, decodeError(iter)
			}
			return nil, fmt.Errorf("json parser: invalid JSON value after %d top-level value(s)", n)
		}
		if arrayRoot {
			return nil, fmt.Errorf("json parser: unexpected data after top-level array")
		}

		switch next {
		case jsoniter.ArrayValue:
			if n > 0 {
				return nil, fmt.Errorf("json parser: top-level array after %d object(s)", n)
			}
			arrayRoot = true
			if err := readArrayOfObjects(iter, b.add); err != nil {
				return nil, err
			}
		case jsoniter.ObjectValue:
			obj, err := readObject(iter)
			if err != nil {
				return nil, err
			}
			objects = append(objects, obj)
		default:
			return nil, fmt.Errorf("json parser: unsupported top-level value (type %d)", next)
		}
	}

	if len(objects) == 1 {
		env, err := p.envelope(objects[0])
		if err != nil {
			return nil, err
		}
		if env != nil {
			if err := readArrayOfObjects(jsoniter.ParseBytes(jsoniter.ConfigDefault, env), b.add); err != nil {
				return nil, err
			}
			return b.frame()
		}
	}
	for _, obj := range objects {
		b.add(obj)
	}
	return b.frame()
}

// envelope returns the records array of a wrapper object, or nil when obj is
// a plain record.
func (p *Parser) envelope(obj []field) (rawJSON, error) {
	var (
		best  rawJSON
		count = -1
	)
	for _, f := range obj {
		raw, ok := f.val.(rawJSON)
		if !ok || len(raw) == 0 || raw[0] != '[' {
			if p.opt.EnvelopeField != "" && f.key == p.opt.EnvelopeField {
				return nil, fmt.Errorf("json parser: envelope field %q is not an array", f.key)
			}
			continue
		}
		n, ok := countObjects(raw)
		if p.opt.EnvelopeField != "" {
			if f.key != p.opt.EnvelopeField {
				continue
			}
			if !ok {
				return nil, fmt.Errorf("json parser: envelope field %q is not an array of objects", f.key)
			}
			return raw, nil
		}
		if ok && n > count {
			best, count = raw, n
		}
	}
	if p.opt.EnvelopeField != "" {
		return nil, fmt.Errorf("json parser: envelope field %q not found", p.opt.EnvelopeField)
	}
	return best, nil
}

// countObjects reports the element count of raw if every element is an
// object.
func countObjects(raw rawJSON) (int, bool) {
	iter := jsoniter.ParseBytes(jsoniter.ConfigDefault, raw)
	n, ok := 0, true
	iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		if it.WhatIsNext() != jsoniter.ObjectValue {
			ok = false
			return false
		}
		it.Skip()
		n++
		return it.Error == nil
	})
	return n, ok && iter.Error == nil
}

func readArrayOfObjects(iter *jsoniter.Iterator, add func([]field)) error {
	var (
		idx    int
		objErr error
	)
	ok := iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		if it.WhatIsNext() != jsoniter.ObjectValue {
			objErr = fmt.Errorf("json parser: element %d in array is not an object", idx)
			return false
		}
		obj, err := readObject(it)
		if err != nil {
			objErr = err
			return false
		}
		add(obj)
		idx++
		return true
	})
	if objErr != nil {
		return objErr
	}
	if !ok || iter.Error != nil {
		return decodeError(iter)
	}
	return nil
}

func readObject(iter *jsoniter.Iterator) ([]field, error) {
	var fields []field
	ok := iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		fields = append(fields, field{key: key, val: readValue(it)})
		return it.Error == nil
	})
	if !ok || iter.Error != nil {
		return nil, decodeError(iter)
	}
	return fields, nil
}

func readValue(it *jsoniter.Iterator) any {
	switch it.WhatIsNext() {
	case jsoniter.StringValue:
		return it.ReadString()
	case jsoniter.NumberValue:
		return number(it.ReadNumber())
	case jsoniter.BoolValue:
		return it.ReadBool()
	case jsoniter.NilValue:
		it.ReadNil()
		return nil
	case jsoniter.ArrayValue, jsoniter.ObjectValue:
		return rawJSON(it.SkipAndReturnBytes())
	default:
		it.ReportError("readValue", "unexpected token")
		return nil
	}
}

func decodeError(iter *jsoniter.Iterator) error {
	if iter.Error == nil || errors.Is(iter.Error, io.EOF) {
		return fmt.Errorf("json parser: unexpected end of input")
	}
	return fmt.Errorf("json parser: decode: %w", iter.Error)
}

// number maps a JSON number to int64 when it is written without a fraction or
// exponent and fits, else float64.
func number(n stdjson.Number) any {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return s
}

// cell converts a decoded value to a frame cell.
func cell(v any) any {
	raw, ok := v.(rawJSON)
	if !ok {
		return v
	}
	var buf bytes.Buffer
	if err := stdjson.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// builder accumulates records into positional rows, adding columns as they
// first appear.
type builder struct {
	cols []string
	idx  map[string]int
	rows [][]any
}

func newBuilder() *builder { return &builder{idx: make(map[string]int)} }

func (b *builder) add(obj []field) {
	row := make([]any, len(b.cols))
	for _, f := range obj {
		i, ok := b.idx[f.key]
		if !ok {
			name := f.key
			if name == "" {
				name = fmt.Sprintf("col_%d", len(b.cols))
			}
			i = len(b.cols)
			b.idx[f.key] = i
			b.cols = append(b.cols, name)
			row = append(row, nil)
		}
		row[i] = cell(f.val)
	}
	b.rows = append(b.rows, row)
}

func (b *builder) frame() (*frame.Frame, error) {
	return frame.New(b.cols, b.rows)
}
