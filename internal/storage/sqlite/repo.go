// Package sqlite implements the SQLite storage backend using the pure-Go
// modernc.org/sqlite driver. It needs no cgo, which makes it the backend of
// choice for tests and for hosts without a DuckDB build. Extensions are not
// supported; timestamps are stored as fixed-width UTC text.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"brewetl/internal/ddl"
	"brewetl/internal/schema"
	"brewetl/internal/storage"
	"brewetl/internal/storage/sqlstore"
)

// Kind is the storage.kind this package registers.
const Kind = "sqlite"

type dialect struct{}

func (dialect) Name() string { return Kind }

// ColumnType prefers SQLite's canonical affinities; booleans are stored as
// 0/1 integers.
func (dialect) ColumnType(k schema.Kind) string {
	switch k {
	case schema.KindInteger, schema.KindBoolean:
		return "INTEGER"
	case schema.KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (dialect) TimestampType() string { return "TEXT" }

func (dialect) ReplaceTable(ctx context.Context, tx *sql.Tx, def ddl.TableDef) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ddl.QuoteFQN(def.FQN)); err != nil {
		return err
	}
	stmt, err := ddl.BuildCreateTableSQL(ddl.Create, def)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, stmt)
	return err
}

func (dialect) EncodeTime(t time.Time) any { return t.UTC().Format(sqlstore.TimeLayout) }

func (dialect) Placeholder(int) string { return "?" }

func (dialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (dialect) LoadExtension(_ context.Context, _ *sql.DB, name string) error {
	return fmt.Errorf("sqlite: extension %s: %w", name, storage.ErrUnsupported)
}

// MaxParams stays under SQLITE_MAX_VARIABLE_NUMBER (32766).
func (dialect) MaxParams() int { return 32000 }

// NewRepository opens a SQLite database. DSN is passed to database/sql, e.g.
//
//	"data/obdb.sqlite"
//	"file:etl.db?cache=shared"
//	":memory:"
//
// The pool is limited to one connection so an in-memory database is shared
// by every statement.
func NewRepository(ctx context.Context, cfg storage.Config) (*sqlstore.Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if err := sqlstore.EnsureParentDir(cfg.DSN); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	return sqlstore.New(db, dialect{}, sqlstore.Options{BatchSize: cfg.BatchSize, Logger: cfg.Logger}), nil
}
