// Package etl wires datasources, parsers, transformers and storage into the
// two brewery loaders. Each Loader.Run is one audited ingest run.
package etl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"brewetl/internal/audit"
	"brewetl/internal/datasource"
	"brewetl/internal/datasource/file"
	"brewetl/internal/datasource/httpds"
	"brewetl/internal/frame"
	"brewetl/internal/metrics"
	"brewetl/internal/parser"
	"brewetl/internal/storage"
	"brewetl/internal/transformer"
	"brewetl/internal/transformer/builtin"
)

// Result summarizes a finished run.
type Result struct {
	RunID       string
	Source      string
	Table       string
	Rows        int64
	Duration    time.Duration
	Fingerprint uint64 // xxh3 of the raw payload
	Cached      bool   // payload came from the local cache
}

// Loader runs jobs against one repository.
type Loader struct {
	repo    storage.Repository
	fetcher datasource.Fetcher
	logger  *zap.Logger
	job     string // metrics job label
}

// NewLoader returns a Loader. A nil logger disables logging; an empty
// metricsJob becomes "brewetl".
func NewLoader(repo storage.Repository, fetcher datasource.Fetcher, logger *zap.Logger, metricsJob string) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metricsJob == "" {
		metricsJob = "brewetl"
	}
	return &Loader{repo: repo, fetcher: fetcher, logger: logger, job: metricsJob}
}

// Run executes job and records exactly one ingest run for it. On failure the
// run is audited as failed with the error text as note and the original
// error is returned. An audit write failure after a successful load is
// returned; after a failed load it is only logged.
func (l *Loader) Run(ctx context.Context, job Job) (Result, error) {
	res := Result{RunID: uuid.NewString(), Source: job.Source, Table: job.Table}
	log := l.logger.With(
		zap.String("run_id", res.RunID),
		zap.String("source", job.Source),
		zap.String("table", job.Table),
	)
	log.Info("ingest run started", zap.String("url", job.URL))

	start := time.Now()
	err := l.run(ctx, job, log, &res)
	res.Duration = time.Since(start)

	var run audit.Run
	if err != nil {
		run = audit.Failed(job.Source, job.Table, res.Rows, res.Duration, err)
	} else {
		run = audit.Succeeded(job.Source, job.Table, res.Rows, res.Duration)
	}

	// The run log is written even when ctx was canceled mid-run.
	auditCtx := context.WithoutCancel(ctx)
	auditErr := l.step("audit", func() error { return l.repo.AppendRun(auditCtx, run) })
	metrics.RecordRun(l.job, job.Source, run.Status)

	fields := []zap.Field{
		zap.String("status", run.Status),
		zap.Int64("rows", res.Rows),
		zap.Duration("elapsed", res.Duration),
	}
	if auditErr != nil {
		log.Error("ingest run not recorded", append(fields, zap.Error(auditErr))...)
	}
	if err != nil {
		log.Error("ingest run failed", append(fields, zap.Error(err))...)
		return res, err
	}
	log.Info("ingest run finished", fields...)
	if auditErr != nil {
		return res, fmt.Errorf("etl: record %s run: %w", job.Source, auditErr)
	}
	return res, nil
}

// RunAll runs jobs in order and stops at the first failure.
func (l *Loader) RunAll(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		res, err := l.Run(ctx, job)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (l *Loader) run(ctx context.Context, job Job, log *zap.Logger, res *Result) error {
	var (
		data []byte
		f    *frame.Frame
	)

	if err := l.step("extract", func() (err error) {
		data, res.Cached, err = l.extract(ctx, job, log)
		return err
	}); err != nil {
		return err
	}
	res.Fingerprint = xxh3.Hash(data)
	log.Info("payload ready",
		zap.Int("bytes", len(data)),
		zap.String("xxh3", fmt.Sprintf("%016x", res.Fingerprint)),
		zap.Bool("cached", res.Cached),
	)

	if err := l.step("parse", func() error {
		p, err := parser.ForFormat(job.Format)
		if err != nil {
			return err
		}
		if f, err = p.Parse(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("%s: parse %s: %w", job.Context, job.Format, err)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := l.step("validate", func() (err error) {
		chain := append(transformer.Chain{builtin.Normalize{}}, job.Checks...)
		f, err = chain.Apply(f)
		return err
	}); err != nil {
		return err
	}
	f.Profile(log, job.Context)

	if job.Spatial {
		if err := l.step("spatial", func() error {
			err := l.repo.LoadExtension(ctx, SpatialExtension)
			switch {
			case errors.Is(err, storage.ErrUnsupported):
				log.Warn("spatial extension not available on this backend; skipping", zap.Error(err))
				return nil
			case err != nil:
				return fmt.Errorf("load %s extension: %w", SpatialExtension, err)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	return l.step("load", func() (err error) {
		res.Rows, err = l.repo.ReplaceTable(ctx, job.Table, f)
		if err == nil {
			metrics.RecordRows(l.job, job.Source, res.Rows)
		}
		return err
	})
}

// extract returns the raw payload, preferring the job's cache file when it
// exists and saving fresh downloads to it.
func (l *Loader) extract(ctx context.Context, job Job, log *zap.Logger) ([]byte, bool, error) {
	if job.CachePath != "" {
		ok, err := file.Exists(job.CachePath)
		if err != nil {
			return nil, false, fmt.Errorf("check cache: %w", err)
		}
		if ok {
			log.Info("reading cached payload", zap.String("path", job.CachePath))
			data, err := readAll(ctx, file.NewLocal(job.CachePath))
			return data, true, err
		}
	}

	if l.fetcher == nil {
		return nil, false, fmt.Errorf("etl: no fetcher configured for %s", job.URL)
	}
	data, err := readAll(ctx, httpds.NewSource(l.fetcher, job.URL))
	if err != nil {
		return nil, false, err
	}

	if job.CachePath != "" {
		if err := file.Save(job.CachePath, data); err != nil {
			return nil, false, fmt.Errorf("save cache: %w", err)
		}
		log.Info("saved payload to cache", zap.String("path", job.CachePath))
	}
	return data, false, nil
}

func readAll(ctx context.Context, src datasource.Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (l *Loader) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(l.job, name, err, time.Since(start))
	return err
}
