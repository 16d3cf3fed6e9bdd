package transformer

import (
	"fmt"
	"strings"
)

// Check names carried by ValidationError.
const (
	CheckNonEmpty        = "non_empty"
	CheckRequiredColumns = "required_columns"
	CheckNotAllNull      = "not_all_null"
)

// ValidationError reports a failed dataset check. Context is the human name
// of the dataset, e.g. "Open Brewery DB CSV".
type ValidationError struct {
	Context string
	Check   string
	Columns []string
}

// Error renders the message recorded in the ingest run note, e.g.
//
//	Open Brewery DB CSV: missing required columns ['phone', 'city']
func (e *ValidationError) Error() string {
	switch e.Check {
	case CheckNonEmpty:
		return e.Context + ": no rows returned"
	case CheckRequiredColumns:
		return fmt.Sprintf("%s: missing required columns %s", e.Context, listString(e.Columns))
	case CheckNotAllNull:
		return fmt.Sprintf("%s: columns entirely null %s", e.Context, listString(e.Columns))
	default:
		return fmt.Sprintf("%s: check %s failed %s", e.Context, e.Check, listString(e.Columns))
	}
}

// listString formats names as ['a', 'b'], the form operators already grep
// for in existing ingest_runs notes.
func listString(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "'" + strings.ReplaceAll(c, "'", `\'`) + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
