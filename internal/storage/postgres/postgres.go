// Package postgres stores the raw tables in a PostgreSQL server through
// pgx v5's database/sql driver. DDL is transactional in Postgres, so the
// drop-and-recreate swap happens inside the load transaction. The "spatial"
// extension maps to PostGIS.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"brewetl/internal/ddl"
	"brewetl/internal/schema"
	"brewetl/internal/storage"
	"brewetl/internal/storage/sqlstore"
)

// Kind is the storage.kind this package registers.
const Kind = "postgres"

// extensionNames maps portable extension names to Postgres ones.
var extensionNames = map[string]string{
	"spatial": "postgis",
}

type dialect struct{}

func (dialect) Name() string { return Kind }

func (dialect) ColumnType(k schema.Kind) string {
	switch k {
	case schema.KindInteger:
		return "BIGINT"
	case schema.KindReal:
		return "DOUBLE PRECISION"
	case schema.KindBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func (dialect) TimestampType() string { return "TIMESTAMPTZ" }

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

func (dialect) EncodeTime(t time.Time) any { return t }

func (dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (dialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
}

func (dialect) LoadExtension(ctx context.Context, db *sql.DB, name string) error {
	if pg, ok := extensionNames[name]; ok {
		name = pg
	}
	stmt := "CREATE EXTENSION IF NOT EXISTS " + ddl.QuoteIdent(name)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: %s: %w", stmt, err)
	}
	return nil
}

// MaxParams stays below the protocol's 65535 bind parameter limit.
func (dialect) MaxParams() int { return 65000 }

// Open connects to the server named by cfg.DSN, a libpq-style keyword/value
// string or a postgres:// URL.
func Open(ctx context.Context, cfg storage.Config) (*sqlstore.Repository, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	connCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	db := stdlib.OpenDB(*connCfg)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping %s@%s: %w", connCfg.User, connCfg.Host, err)
	}

	return sqlstore.New(db, dialect{}, sqlstore.Options{BatchSize: cfg.BatchSize, Logger: cfg.Logger}), nil
}

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg)
	})
}
