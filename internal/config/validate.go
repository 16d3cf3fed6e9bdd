// Package config provides the settings model and helpers for the loaders.
//
// This file adds a lightweight linter for Settings. It performs static checks
// over loaded Settings and returns a list of issues (errors and warnings) that
// callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted settings key (e.g. "fetch.retries", "obdb_table").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// identRE matches a plain or schema-qualified SQL identifier such as
// "raw_obdb_breweries" or "main.raw_obdb_breweries".
var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

var (
	knownStorageKinds   = []string{"duckdb", "sqlite", "postgres"}
	knownMetricBackends = []string{"", "none", "pushgateway", "datadog"}
)

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateSettings performs static validation of s. It does not mutate s.
func ValidateSettings(s Settings) []Issue {
	var issues []Issue

	issues = append(issues, validateStorage(s)...)
	issues = append(issues, validateSources(s)...)
	issues = append(issues, validateFetch(s.Fetch)...)
	issues = append(issues, validateMetrics(s.Metrics)...)

	if s.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "batch_size",
			Message:  fmt.Sprintf("batch_size=%d; must be > 0", s.BatchSize),
		})
	}

	return issues
}

func validateStorage(s Settings) []Issue {
	var issues []Issue

	if !contains(knownStorageKinds, s.StorageKind) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage_kind",
			Message:  fmt.Sprintf("unknown storage kind %q; want one of %v", s.StorageKind, knownStorageKinds),
		})
	}
	if strings.TrimSpace(s.DBPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db_path",
			Message:  "db_path must not be empty",
		})
	}
	if s.StorageKind == "postgres" && !strings.Contains(s.DBPath, "=") && !strings.Contains(s.DBPath, "://") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "db_path",
			Message:  fmt.Sprintf("%q does not look like a postgres DSN", s.DBPath),
		})
	}

	for path, table := range map[string]string{"obdb_table": s.OBDBTable, "ba_table": s.BATable} {
		if !identRE.MatchString(table) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("table name %q is not a valid SQL identifier", table),
			})
		}
		if strings.EqualFold(table, "ingest_runs") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "ingest_runs is reserved for the audit log",
			})
		}
	}
	if s.OBDBTable != "" && strings.EqualFold(s.OBDBTable, s.BATable) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ba_table",
			Message:  "obdb_table and ba_table must differ; each load replaces its table",
		})
	}

	if s.EnableSpatial && s.StorageKind == "sqlite" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "enable_spatial",
			Message:  "spatial extension is not available on sqlite; it will be skipped",
		})
	}

	return issues
}

func validateSources(s Settings) []Issue {
	var issues []Issue
	for path, raw := range map[string]string{"obdb_csv_url": s.OBDBCSVURL, "ba_json_url": s.BAJSONURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("%q is not an absolute http(s) URL", raw),
			})
		}
	}
	if strings.TrimSpace(s.BALocalJSONPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "ba_local_json_path",
			Message:  "no local cache path; the BA feed will be downloaded on every run",
		})
	}
	return issues
}

func validateFetch(f Fetch) []Issue {
	var issues []Issue
	if f.Retries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fetch.retries",
			Message:  "retries must not be negative",
		})
	}
	if f.Timeout <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fetch.timeout",
			Message:  "timeout must be > 0",
		})
	}
	if f.Backoff < 0 || f.MaxBackoff < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fetch.backoff",
			Message:  "backoff durations must not be negative",
		})
	}
	if f.MaxBackoff > 0 && f.Backoff > f.MaxBackoff {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "fetch.max_backoff",
			Message:  fmt.Sprintf("max_backoff=%s is below backoff=%s; every wait will be capped", f.MaxBackoff, f.Backoff),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	if !contains(knownMetricBackends, m.Backend) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
		return issues
	}
	switch m.Backend {
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	}
	return issues
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
