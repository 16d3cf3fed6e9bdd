package main

import (
	"fmt"

	"go.uber.org/zap"

	"brewetl/internal/config"
	"brewetl/internal/metrics"
	"brewetl/internal/metrics/datadog"
	"brewetl/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns a function that
// flushes it and restores the no-op backend. Flush errors are logged only.
func setupMetrics(m config.Metrics, logger *zap.Logger) (func(), error) {
	var closeFn func() error

	switch m.Backend {
	case "", "none":
		logger.Debug("metrics disabled")
		return func() {}, nil

	case "pushgateway":
		b, err := prompush.NewBackend(m.Job, m.PushgatewayURL)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics.SetBackend(b)
		logger.Info("metrics enabled", zap.String("backend", m.Backend), zap.String("url", m.PushgatewayURL), zap.String("job", m.Job))

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  "brewetl.",
			GlobalTags: []string{"job:" + m.Job},
		})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics.SetBackend(b)
		closeFn = b.Close
		logger.Info("metrics enabled", zap.String("backend", m.Backend), zap.String("addr", m.DatadogAddr))

	default:
		return nil, fmt.Errorf("metrics: unknown backend %q", m.Backend)
	}

	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn("metrics flush failed", zap.Error(err))
		}
		if closeFn != nil {
			if err := closeFn(); err != nil {
				logger.Warn("metrics close failed", zap.Error(err))
			}
		}
		metrics.Reset()
	}, nil
}
