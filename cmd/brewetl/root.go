package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brewetl/internal/config"
	"brewetl/internal/logging"
)

// app carries flag values and the state built in PersistentPreRunE.
type app struct {
	cfgPath        string
	verbose        bool
	metricsBackend string
	pushgatewayURL string

	settings *config.Settings
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "brewetl",
		Short: "Load the brewery feeds into the embedded database",
		Long: `brewetl downloads the Open Brewery DB CSV and the Brewers Association
JSON feeds, validates them and replaces their raw tables. Every run is
appended to the ingest_runs table with its status, row count and duration.

Settings come from defaults, an optional --config file and the environment
(OBDB_DUCKDB_PATH, OBDB_CSV_URL, BA_JSON_URL, ...), in that order.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "YAML/JSON settings file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logs")
	pf.StringVar(&a.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides METRICS_BACKEND)")
	pf.StringVar(&a.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides PUSHGATEWAY_URL)")

	root.AddCommand(
		a.loadCmd("obdb", "Load the Open Brewery DB CSV feed", obdbJobs),
		a.loadCmd("ba", "Load the Brewers Association JSON feed", baJobs),
		a.loadCmd("all", "Load both feeds, stopping at the first failure", allJobs),
		a.checkCmd(),
	)
	return root
}

// setup loads settings, applies flag overrides, builds the logger and lints
// the result. Lint errors stop the command; warnings are logged.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	s, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.metricsBackend != "" {
		s.Metrics.Backend = strings.ToLower(strings.TrimSpace(a.metricsBackend))
	}
	if a.pushgatewayURL != "" {
		s.Metrics.PushgatewayURL = a.pushgatewayURL
	}
	if a.verbose {
		s.Log.Level = "debug"
	}

	logger, err := logging.New(s.Log.Level, s.Log.Format)
	if err != nil {
		return err
	}
	a.settings, a.logger = s, logger

	issues := config.ValidateSettings(*s)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			logger.Error("invalid settings", zap.String("path", iss.Path), zap.String("issue", iss.Message))
		} else {
			logger.Warn("settings warning", zap.String("path", iss.Path), zap.String("issue", iss.Message))
		}
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("invalid settings: %d error(s)", countErrors(issues))
	}
	return nil
}

func countErrors(issues []config.Issue) int {
	n := 0
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			n++
		}
	}
	return n
}
