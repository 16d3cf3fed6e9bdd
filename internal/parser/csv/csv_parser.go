// Package csv parses a delimited feed with a header row into a frame. Empty
// cells and the usual null tokens ("NA", "NaN", "null", ...) become nulls, and
// with InferTypes each column is narrowed to int64, bool or float64 when every
// non-null value in it parses as that type.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"brewetl/internal/frame"
)

// Options configures the CSV parser. Zero values are usable.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each field value.
	TrimSpace bool

	// InferTypes converts cells of uniformly numeric or boolean columns.
	InferTypes bool

	// NullTokens replaces the default set of cell values read as null. An
	// empty cell is always null.
	NullTokens []string
}

// DefaultNullTokens are the cell values read as null when Options.NullTokens
// is nil.
var DefaultNullTokens = []string{
	"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs but not concurrently.
type Parser struct {
	opt   Options
	nulls map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	tokens := opt.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	nulls := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		nulls[t] = struct{}{}
	}
	return &Parser{opt: opt, nulls: nulls}
}

// Parse reads the header and every data row from r. A row with more fields
// than the header is an error; shorter rows are padded with nulls.
func (p *Parser) Parse(r io.Reader) (*frame.Frame, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv header: no header row")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h)

	var rows [][]any
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(rec) > len(headers) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("csv line %d: %d fields, header has %d", line, len(rec), len(headers))
		}
		row := make([]any, len(headers))
		for i, val := range rec {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			row[i] = p.cell(val)
		}
		rows = append(rows, row)
	}

	if p.opt.InferTypes {
		for col := range headers {
			inferColumn(rows, col)
		}
	}
	return frame.New(headers, rows)
}

func (p *Parser) cell(s string) any {
	if s == "" {
		return nil
	}
	if _, ok := p.nulls[s]; ok {
		return nil
	}
	return s
}

// normalizeHeaders strips the BOM, trims names, names blank headers after
// their position, and suffixes repeated names (".1", ".2", ...). Names are
// compared case-insensitively, as the SQL backends compare identifiers.
func normalizeHeaders(h []string) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	used := make(map[string]bool, len(h))
	dups := make(map[string]int)
	for i, col := range h {
		c := strings.TrimSpace(col)
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		key := strings.ToLower(c)
		name := c
		for used[strings.ToLower(name)] {
			dups[key]++
			name = c + "." + strconv.Itoa(dups[key])
		}
		used[strings.ToLower(name)] = true
		res[i] = name
	}
	return res
}
