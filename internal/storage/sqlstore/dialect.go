package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"brewetl/internal/ddl"
	"brewetl/internal/schema"
)

// Dialect captures what differs between the engines.
type Dialect interface {
	// Name is used as the error prefix, e.g. "duckdb".
	Name() string

	// ColumnType maps a logical kind to a SQL type.
	ColumnType(k schema.Kind) string

	// TimestampType is the SQL type of ingest_runs.ts.
	TimestampType() string

	// ReplaceTable drops and recreates the table described by def inside tx.
	ReplaceTable(ctx context.Context, tx *sql.Tx, def ddl.TableDef) error

	// EncodeTime converts a timestamp to a bind value.
	EncodeTime(t time.Time) any

	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string

	// TableExistsQuery returns a query with one placeholder (the unqualified
	// table name) that yields a count.
	TableExistsQuery() string

	// LoadExtension installs and loads an extension, or returns
	// storage.ErrUnsupported.
	LoadExtension(ctx context.Context, db *sql.DB, name string) error

	// MaxParams caps bind parameters per statement.
	MaxParams() int
}
