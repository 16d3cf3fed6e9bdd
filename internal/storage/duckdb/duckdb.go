// Package duckdb is the default storage backend: an embedded DuckDB database
// file opened through github.com/marcboeker/go-duckdb. Tables are swapped with
// CREATE OR REPLACE TABLE inside a transaction, so readers see either the old
// or the new table.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2" // registers the "duckdb" driver

	"brewetl/internal/ddl"
	"brewetl/internal/schema"
	"brewetl/internal/storage"
	"brewetl/internal/storage/sqlstore"
)

// Kind is the storage.kind this package registers.
const Kind = "duckdb"

type dialect struct{}

func (dialect) Name() string { return Kind }

func (dialect) ColumnType(k schema.Kind) string {
	switch k {
	case schema.KindInteger:
		return "BIGINT"
	case schema.KindReal:
		return "DOUBLE"
	case schema.KindBoolean:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

func (dialect) TimestampType() string { return "TIMESTAMPTZ" }

func (dialect) ReplaceTable(ctx context.Context, tx *sql.Tx, def ddl.TableDef) error {
	stmt, err := ddl.BuildCreateTableSQL(ddl.CreateOrReplace, def)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, stmt)
	return err
}

func (dialect) EncodeTime(t time.Time) any { return t }

func (dialect) Placeholder(int) string { return "?" }

func (dialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?"
}

// LoadExtension runs INSTALL then LOAD. INSTALL may download the extension on
// first use.
func (dialect) LoadExtension(ctx context.Context, db *sql.DB, name string) error {
	for _, stmt := range []string{"INSTALL " + name, "LOAD " + name} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("duckdb: %s: %w", stmt, err)
		}
	}
	return nil
}

func (dialect) MaxParams() int { return 30000 }

// Open opens (creating if needed) the DuckDB file at cfg.DSN.
func Open(ctx context.Context, cfg storage.Config) (*sqlstore.Repository, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("duckdb: DSN must not be empty")
	}
	if err := sqlstore.EnsureParentDir(cfg.DSN); err != nil {
		return nil, fmt.Errorf("duckdb: %w", err)
	}

	db, err := sql.Open("duckdb", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}

	return sqlstore.New(db, dialect{}, sqlstore.Options{BatchSize: cfg.BatchSize, Logger: cfg.Logger}), nil
}

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg)
	})
}
