// Package storage defines the backend-neutral contract for the embedded
// analytical database and a registry of backends. Concrete backends live in
// subpackages and register themselves in init; import storage/all to enable
// every built-in backend.
package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"brewetl/internal/audit"
	"brewetl/internal/frame"
)

// ErrUnsupported is returned by backends for operations they cannot perform,
// such as loading a DuckDB extension into SQLite.
var ErrUnsupported = errors.New("storage: operation not supported by backend")

// Config selects and configures a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "duckdb" or "sqlite".
	Kind string

	// DSN is the database location, normally a file path. Parent directories
	// of a plain file path are created on open.
	DSN string

	// BatchSize caps the rows per INSERT statement. Zero means 1000.
	BatchSize int

	// Logger receives batch progress at debug level. Nil means no logging.
	Logger *zap.Logger
}

// Repository is one open database.
type Repository interface {
	audit.Store

	// ReplaceTable drops and recreates table with column types inferred from
	// f, inserts every row, and returns the row count of the new table. The
	// swap is atomic: on error the previous table is left in place.
	ReplaceTable(ctx context.Context, table string, f *frame.Frame) (int64, error)

	// CountRows returns SELECT COUNT(*) for table.
	CountRows(ctx context.Context, table string) (int64, error)

	// LoadExtension installs and loads a database extension by name.
	LoadExtension(ctx context.Context, name string) error

	// ListRuns returns ingest runs newest first, optionally filtered by
	// source. limit <= 0 means no limit.
	ListRuns(ctx context.Context, source string, limit int) ([]audit.Run, error)

	// Exec executes a raw SQL statement.
	Exec(ctx context.Context, sql string) error

	Close() error
}
