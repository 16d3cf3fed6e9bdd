package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brewetl/internal/config"
	"brewetl/internal/datasource/httpds"
	"brewetl/internal/etl"
	"brewetl/internal/storage"

	// register every storage backend; storage_kind picks one at runtime.
	_ "brewetl/internal/storage/all"
)

type jobsFunc func(s config.Settings) []etl.Job

func obdbJobs(s config.Settings) []etl.Job { return []etl.Job{etl.OBDBJob(s)} }
func baJobs(s config.Settings) []etl.Job   { return []etl.Job{etl.BAJob(s)} }
func allJobs(s config.Settings) []etl.Job  { return []etl.Job{etl.OBDBJob(s), etl.BAJob(s)} }

func (a *app) loadCmd(use, short string, jobs jobsFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runJobs(cmd.Context(), jobs(*a.settings))
		},
	}
}

func (a *app) runJobs(ctx context.Context, jobs []etl.Job) (err error) {
	s := a.settings

	flush, err := setupMetrics(s.Metrics, a.logger)
	if err != nil {
		return err
	}
	defer flush()

	repo, err := storage.New(ctx, storage.Config{
		Kind:      s.StorageKind,
		DSN:       s.DBPath,
		BatchSize: s.BatchSize,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", s.DBPath, cerr)
		}
	}()

	client := httpds.NewClient(httpds.Config{
		Timeout:        s.Fetch.Timeout,
		MaxRetries:     s.Fetch.Retries,
		InitialBackoff: s.Fetch.Backoff,
		MaxBackoff:     s.Fetch.MaxBackoff,
		UserAgent:      s.Fetch.UserAgent,
		Logger:         a.logger,
	})

	loader := etl.NewLoader(repo, client, a.logger, s.Metrics.Job)
	results, err := loader.RunAll(ctx, jobs)
	for _, r := range results {
		a.logger.Debug("run summary",
			zap.String("run_id", r.RunID),
			zap.String("source", r.Source),
			zap.Int64("rows", r.Rows),
			zap.Duration("elapsed", r.Duration),
		)
	}
	return err
}
