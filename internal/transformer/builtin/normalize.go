// Package builtin contains the reusable transformers used by the loaders:
// Normalize and the dataset checks NonEmpty, RequireColumns and NotAllNull.
package builtin

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"brewetl/internal/frame"
)

// Normalize cleans text in place: header names and string cells are NFC
// normalized, NO-BREAK SPACE becomes a plain space and surrounding whitespace
// is trimmed. String cells left empty become null. Headers that collide after
// trimming, ignoring case, get ".N" suffixes.
type Normalize struct{}

// Apply implements transformer.Transformer.
func (Normalize) Apply(f *frame.Frame) (*frame.Frame, error) {
	cols := make([]string, len(f.Columns))
	used := make(map[string]bool, len(f.Columns))
	dups := make(map[string]int)
	for i, c := range f.Columns {
		base := cleanText(c)
		key := strings.ToLower(base)
		name := base
		for used[strings.ToLower(name)] {
			dups[key]++
			name = base + "." + strconv.Itoa(dups[key])
		}
		used[strings.ToLower(name)] = true
		cols[i] = name
	}
	f.Rename(cols)

	for _, row := range f.Rows {
		for i, v := range row {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if s = cleanText(s); s == "" {
				row[i] = nil
			} else {
				row[i] = s
			}
		}
	}
	return f, nil
}

func cleanText(s string) string {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}
