// Package ddl is a small, dialect-neutral model for CREATE TABLE statements.
// Storage dialects supply the verb (CREATE TABLE, CREATE OR REPLACE TABLE,
// CREATE TABLE IF NOT EXISTS) and the column types. Every backend accepts
// double-quoted identifiers, so quoting is shared.
package ddl

import (
	"fmt"
	"strings"
)

// Verbs understood by BuildCreateTableSQL.
const (
	Create            = "CREATE TABLE"
	CreateOrReplace   = "CREATE OR REPLACE TABLE"
	CreateIfNotExists = "CREATE TABLE IF NOT EXISTS"
)

// BuildCreateTableSQL renders
//
//	<verb> "schema"."table" (
//	  "col1" TYPE [NOT NULL],
//	  "col2" TYPE
//	);
//
// An empty verb means Create. Column names are quoted verbatim, so they must
// match the names used for inserts.
func BuildCreateTableSQL(verb string, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	if verb == "" {
		verb = Create
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", c.Name)
		}

		var sb strings.Builder
		sb.WriteString(QuoteIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}

	return fmt.Sprintf("%s %s (\n  %s\n);", verb, QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// QuoteIdent double-quotes id, doubling embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes each dot-separated segment of fqn; blank segments are
// dropped.
func QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}
