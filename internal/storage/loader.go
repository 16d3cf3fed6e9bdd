package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CopyFn inserts rows (aligned to columns) and returns the number inserted.
// Backends implement it with their most efficient insert path; the SQL
// backends use multi-row INSERT statements.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches slices rows into batches of batchSize and calls copyFn for each.
// It returns the total reported by copyFn and the first error. Each flush logs
// a progress line at debug level with running totals and rows/sec since the
// previous flush.
func LoadBatches(
	ctx context.Context,
	logger *zap.Logger,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		total     int64
		batches   int64
		start     = time.Now()
		lastFlush = start
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			logger.Warn("loader: batch insert failed",
				zap.Int64("batch", batches+1),
				zap.Int64("inserted", n),
				zap.Int64("total", total),
				zap.Error(err),
			)
			return total, err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlush)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(n) / sinceLast.Seconds()
		}
		logger.Debug("loader: batch flushed",
			zap.Int64("batch", batches),
			zap.Float64("rps", rps),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", total),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
		)
		lastFlush = now
	}
	return total, nil
}
