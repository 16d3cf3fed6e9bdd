package config

import (
	"strings"
	"testing"
	"time"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

// validSettings returns a Settings value that lints clean; tests mutate one
// field at a time.
func validSettings() Settings {
	return Settings{
		DBPath:          "data/obdb.duckdb",
		StorageKind:     "duckdb",
		OBDBCSVURL:      DefaultOBDBCSVURL,
		BAJSONURL:       DefaultBAJSONURL,
		BALocalJSONPath: "data/breweries.json",
		OBDBTable:       "raw_obdb_breweries",
		BATable:         "raw_ba_json_data",
		EnableSpatial:   true,
		BatchSize:       1000,
		Fetch: Fetch{
			Timeout:    15 * time.Second,
			Retries:    3,
			Backoff:    2 * time.Second,
			MaxBackoff: 30 * time.Second,
			UserAgent:  DefaultUserAgent,
		},
		Metrics: Metrics{Backend: "none", Job: DefaultJob},
	}
}

func TestValidateSettings_ValidMinimal(t *testing.T) {
	t.Parallel()

	issues := ValidateSettings(validSettings())
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
	if HasErrors(issues) {
		t.Fatalf("HasErrors on clean settings")
	}
}

// TestValidateSettings_Table covers one misconfiguration per case.
func TestValidateSettings_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
		sev    IssueSeverity
		path   string
		substr string
	}{
		{"unknown storage kind", func(s *Settings) { s.StorageKind = "oracle" }, SeverityError, "storage_kind", "unknown storage kind"},
		{"empty db path", func(s *Settings) { s.DBPath = " " }, SeverityError, "db_path", "must not be empty"},
		{"bad table identifier", func(s *Settings) { s.OBDBTable = "raw; DROP TABLE x" }, SeverityError, "obdb_table", "not a valid SQL identifier"},
		{"reserved table", func(s *Settings) { s.BATable = "ingest_runs" }, SeverityError, "ba_table", "reserved"},
		{"same table twice", func(s *Settings) { s.BATable = s.OBDBTable }, SeverityError, "ba_table", "must differ"},
		{"relative url", func(s *Settings) { s.OBDBCSVURL = "breweries.csv" }, SeverityError, "obdb_csv_url", "absolute http(s) URL"},
		{"ftp url", func(s *Settings) { s.BAJSONURL = "ftp://example.com/x.json" }, SeverityError, "ba_json_url", "absolute http(s) URL"},
		{"negative retries", func(s *Settings) { s.Fetch.Retries = -1 }, SeverityError, "fetch.retries", "must not be negative"},
		{"zero timeout", func(s *Settings) { s.Fetch.Timeout = 0 }, SeverityError, "fetch.timeout", "> 0"},
		{"backoff above cap", func(s *Settings) { s.Fetch.Backoff = time.Minute }, SeverityWarning, "fetch.max_backoff", "capped"},
		{"zero batch", func(s *Settings) { s.BatchSize = 0 }, SeverityError, "batch_size", "must be > 0"},
		{"unknown metrics", func(s *Settings) { s.Metrics.Backend = "graphite" }, SeverityError, "metrics.backend", "unknown metrics backend"},
		{"pushgateway without url", func(s *Settings) { s.Metrics.Backend = "pushgateway" }, SeverityError, "metrics.pushgateway_url", "requires a URL"},
		{"datadog without addr", func(s *Settings) { s.Metrics.Backend = "datadog" }, SeverityError, "metrics.datadog_addr", "DogStatsD"},
		{"spatial on sqlite", func(s *Settings) { s.StorageKind = "sqlite" }, SeverityWarning, "enable_spatial", "not available on sqlite"},
		{"postgres path not a dsn", func(s *Settings) { s.StorageKind = "postgres" }, SeverityWarning, "db_path", "postgres DSN"},
		{"no cache path", func(s *Settings) { s.BALocalJSONPath = "" }, SeverityWarning, "ba_local_json_path", "downloaded on every run"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tc.mutate(&s)
			issues := ValidateSettings(s)
			if !hasIssue(t, issues, tc.sev, tc.path, tc.substr) {
				t.Fatalf("expected %s at %s containing %q; got %+v", tc.sev, tc.path, tc.substr, issues)
			}
			if tc.sev == SeverityWarning && HasErrors(issues) {
				t.Fatalf("warning-only case produced errors: %+v", issues)
			}
		})
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "fetch.retries", Message: "boom"}
	if got, want := iss.Error(), "error at fetch.retries: boom"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
