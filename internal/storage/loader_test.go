package storage

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func makeRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{int64(i), "x"}
	}
	return rows
}

// TestLoadBatches_Basic verifies rows are grouped into batches and the total
// equals the sum of all copyFn returns.
func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	var sizes []int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		sizes = append(sizes, len(rows))
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), zaptest.NewLogger(t), []string{"c1", "c2"}, makeRows(7), 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if len(sizes) != 3 || sizes[0] != 3 || sizes[1] != 3 || sizes[2] != 1 {
		t.Fatalf("batch sizes %v, want [3 3 1]", sizes)
	}
}

// TestLoadBatches_ErrorPropagation ensures the first copy error is returned
// and no later batch runs.
func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("copy failed")
	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	core, logs := observer.New(zap.WarnLevel)
	total, err := LoadBatches(context.Background(), zap.New(core), []string{"c"}, makeRows(5), 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	if total != 2 || batches != 2 {
		t.Fatalf("total=%d batches=%d, want 2 and 2", total, batches)
	}
	if logs.FilterMessage("loader: batch insert failed").Len() != 1 {
		t.Fatalf("expected one failure log line")
	}
}

// TestLoadBatches_ContextCancel checks the loader stops before the next batch
// once ctx is canceled.
func TestLoadBatches_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		cancel()
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(ctx, nil, []string{"c"}, makeRows(10), 4, copyFn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if total != 4 {
		t.Fatalf("total %d, want 4", total)
	}
}

func TestLoadBatches_InvalidArgs(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	if _, err := LoadBatches(context.Background(), nil, nil, nil, 0, noop); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
	if _, err := LoadBatches(context.Background(), nil, nil, nil, 1, nil); err == nil {
		t.Fatalf("expected error for nil copyFn")
	}
	total, err := LoadBatches(context.Background(), nil, nil, nil, 1, noop)
	if err != nil || total != 0 {
		t.Fatalf("empty input: total=%d err=%v", total, err)
	}
}
