// Package sqlstore implements storage.Repository over database/sql. The
// DuckDB, SQLite and Postgres backends share it and differ only by Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"brewetl/internal/audit"
	"brewetl/internal/ddl"
	"brewetl/internal/frame"
	"brewetl/internal/schema"
	"brewetl/internal/storage"
)

// DefaultBatchSize is used when Options.BatchSize is zero.
const DefaultBatchSize = 1000

// extensionRE matches extension names accepted by LoadExtension.
var extensionRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configures a Repository.
type Options struct {
	BatchSize int
	Logger    *zap.Logger
}

// Repository is a storage.Repository over a *sql.DB.
type Repository struct {
	db        *sql.DB
	dialect   Dialect
	batchSize int
	logger    *zap.Logger
}

var _ storage.Repository = (*Repository)(nil)

// New wraps db. The Repository owns db and closes it on Close.
func New(db *sql.DB, d Dialect, opt Options) *Repository {
	if opt.BatchSize <= 0 {
		opt.BatchSize = DefaultBatchSize
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &Repository{
		db:        db,
		dialect:   d,
		batchSize: opt.BatchSize,
		logger:    opt.Logger.With(zap.String("backend", d.Name())),
	}
}

// DB exposes the underlying handle for tests and ad-hoc queries.
func (r *Repository) DB() *sql.DB { return r.db }

// EnsureParentDir creates the directory holding a file DSN. In-memory and
// URI-style DSNs are left alone.
func EnsureParentDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}

// ReplaceTable implements storage.Repository.
func (r *Repository) ReplaceTable(ctx context.Context, table string, f *frame.Frame) (int64, error) {
	if f == nil || len(f.Columns) == 0 {
		return 0, fmt.Errorf("%s: replace %s: frame has no columns", r.dialect.Name(), table)
	}
	cols := schema.Infer(f)
	if err := schema.Coerce(f, cols); err != nil {
		return 0, fmt.Errorf("%s: replace %s: %w", r.dialect.Name(), table, err)
	}

	def := ddl.TableDef{FQN: table}
	for _, c := range cols {
		def.Columns = append(def.Columns, ddl.ColumnDef{
			Name:     c.Name,
			SQLType:  r.dialect.ColumnType(c.Kind),
			Nullable: true,
		})
	}
	fqn := ddl.QuoteFQN(table)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", r.dialect.Name(), err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.dialect.ReplaceTable(ctx, tx, def); err != nil {
		return 0, fmt.Errorf("%s: recreate %s: %w", r.dialect.Name(), table, err)
	}

	per := r.batchSize
	if maxRows := r.dialect.MaxParams() / len(f.Columns); maxRows < per {
		per = max(maxRows, 1)
	}
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return insertRows(ctx, tx, r.dialect, fqn, columns, rows)
	}
	if _, err := storage.LoadBatches(ctx, r.logger.With(zap.String("table", table)), f.Columns, f.Rows, per, copyFn); err != nil {
		return 0, fmt.Errorf("%s: insert into %s: %w", r.dialect.Name(), table, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", r.dialect.Name(), err)
	}
	return r.CountRows(ctx, table)
}

// insertRows runs one multi-row INSERT.
func insertRows(ctx context.Context, tx *sql.Tx, d Dialect, fqn string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = ddl.QuoteIdent(c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", fqn, strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple(d, len(args)+1, len(columns)))
		args = append(args, row...)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// tuple renders "(p1, p2, ...)" for width arguments starting at first.
func tuple(d Dialect, first, width int) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < width; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.Placeholder(first + i))
	}
	sb.WriteByte(')')
	return sb.String()
}

// CountRows implements storage.Repository.
func (r *Repository) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	q := "SELECT COUNT(*) FROM " + ddl.QuoteFQN(table)
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count %s: %w", r.dialect.Name(), table, err)
	}
	return n, nil
}

// LoadExtension implements storage.Repository.
func (r *Repository) LoadExtension(ctx context.Context, name string) error {
	if !extensionRE.MatchString(name) {
		return fmt.Errorf("%s: invalid extension name %q", r.dialect.Name(), name)
	}
	return r.dialect.LoadExtension(ctx, r.db, name)
}

// Exec implements storage.Repository.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("%s: exec: %w", r.dialect.Name(), err)
	}
	return nil
}

// Close implements storage.Repository.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) runsDef() ddl.TableDef {
	text := r.dialect.ColumnType(schema.KindText)
	return ddl.TableDef{
		FQN: audit.Table,
		Columns: []ddl.ColumnDef{
			{Name: "ts", SQLType: r.dialect.TimestampType(), Nullable: true},
			{Name: "source", SQLType: text, Nullable: true},
			{Name: "table_name", SQLType: text, Nullable: true},
			{Name: "row_count", SQLType: r.dialect.ColumnType(schema.KindInteger), Nullable: true},
			{Name: "status", SQLType: text, Nullable: true},
			{Name: "note", SQLType: text, Nullable: true},
			{Name: "duration_seconds", SQLType: r.dialect.ColumnType(schema.KindReal), Nullable: true},
		},
	}
}

// EnsureRunsTable creates ingest_runs when missing.
func (r *Repository) EnsureRunsTable(ctx context.Context) error {
	stmt, err := ddl.BuildCreateTableSQL(ddl.CreateIfNotExists, r.runsDef())
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: create %s: %w", r.dialect.Name(), audit.Table, err)
	}
	return nil
}

// AppendRun implements audit.Store.
func (r *Repository) AppendRun(ctx context.Context, run audit.Run) error {
	if err := r.EnsureRunsTable(ctx); err != nil {
		return err
	}
	if run.TS.IsZero() {
		run.TS = time.Now()
	}

	var note, duration any
	if run.Note != nil {
		note = *run.Note
	}
	if run.Duration != nil {
		duration = *run.Duration
	}

	q := "INSERT INTO " + ddl.QuoteIdent(audit.Table) +
		" (ts, source, table_name, row_count, status, note, duration_seconds) VALUES " + tuple(r.dialect, 1, 7)
	_, err := r.db.ExecContext(ctx, q,
		r.dialect.EncodeTime(run.TS.UTC()), run.Source, run.Table, run.RowCount, run.Status, note, duration)
	if err != nil {
		return fmt.Errorf("%s: append %s: %w", r.dialect.Name(), audit.Table, err)
	}
	return nil
}

// ListRuns implements storage.Repository. A database without ingest_runs
// yields no runs.
func (r *Repository) ListRuns(ctx context.Context, source string, limit int) ([]audit.Run, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, r.dialect.TableExistsQuery(), audit.Table).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s: probe %s: %w", r.dialect.Name(), audit.Table, err)
	}
	if exists == 0 {
		return nil, nil
	}

	q := "SELECT ts, source, table_name, row_count, status, note, duration_seconds FROM " + ddl.QuoteIdent(audit.Table)
	var args []any
	if source != "" {
		q += " WHERE source = " + r.dialect.Placeholder(1)
		args = append(args, source)
	}
	q += " ORDER BY ts DESC"
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: list runs: %w", r.dialect.Name(), err)
	}
	defer rows.Close()

	var out []audit.Run
	for rows.Next() {
		var (
			ts       any
			run      audit.Run
			note     sql.NullString
			duration sql.NullFloat64
		)
		if err := rows.Scan(&ts, &run.Source, &run.Table, &run.RowCount, &run.Status, &note, &duration); err != nil {
			return nil, fmt.Errorf("%s: scan run: %w", r.dialect.Name(), err)
		}
		if run.TS, err = decodeTime(ts); err != nil {
			return nil, fmt.Errorf("%s: scan run: %w", r.dialect.Name(), err)
		}
		if note.Valid {
			run = run.WithNote(note.String)
		}
		if duration.Valid {
			d := duration.Float64
			run.Duration = &d
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: list runs: %w", r.dialect.Name(), err)
	}
	return out, nil
}

// decodeTime accepts the representations the drivers return for ts.
func decodeTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseTime(x)
	case []byte:
		return parseTime(string(x))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected ts type %T", v)
	}
}

// TimeLayout is the fixed-width text form used where timestamps are stored
// as text; it sorts chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unparseable ts " + s)
}
