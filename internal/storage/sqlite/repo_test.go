package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"brewetl/internal/audit"
	"brewetl/internal/frame"
	"brewetl/internal/storage"
	"brewetl/internal/storage/sqlstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRepo(tb testing.TB, batch int) *sqlstore.Repository {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "data", "obdb.sqlite")
	r, err := NewRepository(context.Background(), storage.Config{DSN: path, BatchSize: batch, Logger: zaptest.NewLogger(tb)})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = r.Close() })
	return r
}

func sample(t *testing.T, n int) *frame.Frame {
	t.Helper()
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{int64(i), "Brewery", 1.5, true, nil}
	}
	f, err := frame.New([]string{"id", "name", "latitude", "active", "address 3"}, rows)
	require.NoError(t, err)
	return f
}

// TestReplaceTable_TypesAndCount checks the created schema and that batching
// across several INSERTs lands every row.
func TestReplaceTable_TypesAndCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t, 3)

	n, err := r.ReplaceTable(ctx, "raw_obdb_breweries", sample(t, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)

	var ddlText string
	require.NoError(t, r.DB().QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE name = 'raw_obdb_breweries'").Scan(&ddlText))
	assert.Contains(t, ddlText, `"id" INTEGER`)
	assert.Contains(t, ddlText, `"name" TEXT`)
	assert.Contains(t, ddlText, `"latitude" REAL`)
	assert.Contains(t, ddlText, `"address 3" TEXT`)

	var active int
	require.NoError(t, r.DB().QueryRowContext(ctx, `SELECT active FROM raw_obdb_breweries WHERE id = 3`).Scan(&active))
	assert.Equal(t, 1, active)
}

// TestReplaceTable_ReplacesAndDropsOldColumns proves a reload is a full
// replace, not an append or merge.
func TestReplaceTable_ReplacesAndDropsOldColumns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t, 0)

	_, err := r.ReplaceTable(ctx, "t", sample(t, 5))
	require.NoError(t, err)

	f, err := frame.New([]string{"other"}, [][]any{{"x"}, {"y"}})
	require.NoError(t, err)
	n, err := r.ReplaceTable(ctx, "t", f)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	err = r.Exec(ctx, "SELECT id FROM t")
	require.Error(t, err, "old column must be gone")
}

// TestReplaceTable_RollbackOnFailure leaves the previous table untouched when
// recreating it fails after the DROP.
func TestReplaceTable_RollbackOnFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t, 1)

	_, err := r.ReplaceTable(ctx, "t", sample(t, 4))
	require.NoError(t, err)

	bad := &frame.Frame{Columns: []string{"a", "a"}, Rows: [][]any{{"x", "y"}}}
	_, err = r.ReplaceTable(ctx, "t", bad)
	require.Error(t, err)

	n, err := r.CountRows(ctx, "t")
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestReplaceTable_NoColumns(t *testing.T) {
	t.Parallel()
	r := newRepo(t, 0)

	_, err := r.ReplaceTable(context.Background(), "t", &frame.Frame{})
	require.ErrorContains(t, err, "frame has no columns")
}

// TestReplaceTable_EmptyFrame still creates the table.
func TestReplaceTable_EmptyFrame(t *testing.T) {
	t.Parallel()
	r := newRepo(t, 0)

	f, err := frame.New([]string{"id"}, nil)
	require.NoError(t, err)
	n, err := r.ReplaceTable(context.Background(), "empty_t", f)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAppendAndListRuns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRepo(t, 0)

	runs, err := r.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "no ingest_runs table yet")

	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	for i, status := range []string{audit.StatusSuccess, audit.StatusFailed, audit.StatusSuccess} {
		run := audit.NewRun("obdb_csv", "raw_obdb_breweries", int64(i*10), status).WithDuration(time.Duration(i) * time.Second)
		run.TS = base.Add(time.Duration(i) * 90 * time.Millisecond)
		if status == audit.StatusFailed {
			run = run.WithNote("Open Brewery DB CSV: no rows returned")
		}
		require.NoError(t, r.AppendRun(ctx, run))
	}
	require.NoError(t, r.AppendRun(ctx, audit.NewRun("ba_json", "raw_ba_json_data", 1, audit.StatusSuccess)))

	runs, err = r.ListRuns(ctx, "obdb_csv", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.EqualValues(t, 20, runs[0].RowCount, "newest first")
	assert.True(t, runs[0].TS.Equal(base.Add(180*time.Millisecond)))
	assert.Equal(t, "Open Brewery DB CSV: no rows returned", runs[1].NoteOrEmpty())
	assert.Nil(t, runs[2].Note)
	require.NotNil(t, runs[2].Duration)
	assert.Zero(t, *runs[2].Duration)

	runs, err = r.ListRuns(ctx, "ba_json", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Duration)

	var total int
	require.NoError(t, r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM ingest_runs").Scan(&total))
	assert.Equal(t, 4, total)
}

func TestLoadExtension_Unsupported(t *testing.T) {
	t.Parallel()
	r := newRepo(t, 0)

	err := r.LoadExtension(context.Background(), "spatial")
	assert.True(t, errors.Is(err, storage.ErrUnsupported), "got %v", err)
}

func TestNewRepository_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewRepository(context.Background(), storage.Config{DSN: " "})
	require.ErrorContains(t, err, "DSN must not be empty")
}

func TestInMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r, err := NewRepository(ctx, storage.Config{DSN: ":memory:"})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReplaceTable(ctx, "t", sample(t, 2))
	require.NoError(t, err)
	n, err := r.CountRows(ctx, "t")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
