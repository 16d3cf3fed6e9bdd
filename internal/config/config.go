// Package config defines the settings for the brewery loaders. All tunables
// live outside the code: defaults are set here, an optional YAML/JSON file may
// override them, and environment variables win over both (12-factor friendly).
//
// Typical usage:
//
//	s, err := config.Load("")          // defaults + environment
//	s, err := config.Load("etl.yaml")  // defaults + file + environment
//
// Keys in a config file use the mapstructure names below, e.g.
//
//	db_path: data/obdb.duckdb
//	fetch:
//	  retries: 5
//	  backoff: 1s
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultDBPath          = "data/obdb.duckdb"
	DefaultStorageKind     = "duckdb"
	DefaultOBDBCSVURL      = "https://raw.githubusercontent.com/openbrewerydb/openbrewerydb/master/breweries.csv"
	DefaultBAJSONURL       = "https://www.brewersassociation.org/wp-content/themes/ba2019/json-store/breweries/breweries.json?nocache=1756663355733"
	DefaultBALocalJSONPath = "data/breweries.json"
	DefaultOBDBTable       = "raw_obdb_breweries"
	DefaultBATable         = "raw_ba_json_data"
	DefaultUserAgent       = "obdb-etl/1.0"
	DefaultJob             = "brewery_data_pipeline"
)

// Settings holds every process setting. It is a plain value; copy freely
// after Load returns.
type Settings struct {
	DBPath          string `mapstructure:"db_path"`
	StorageKind     string `mapstructure:"storage_kind"`
	OBDBCSVURL      string `mapstructure:"obdb_csv_url"`
	BAJSONURL       string `mapstructure:"ba_json_url"`
	BALocalJSONPath string `mapstructure:"ba_local_json_path"`
	OBDBTable       string `mapstructure:"obdb_table"`
	BATable         string `mapstructure:"ba_table"`

	// EnableSpatial loads the DuckDB spatial extension before the BA load.
	EnableSpatial bool `mapstructure:"enable_spatial"`

	// BatchSize is the number of rows per INSERT statement.
	BatchSize int `mapstructure:"batch_size"`

	Fetch   Fetch   `mapstructure:"fetch"`
	Metrics Metrics `mapstructure:"metrics"`
	Log     Log     `mapstructure:"log"`
}

// Fetch configures the HTTP datasource.
type Fetch struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
	UserAgent  string        `mapstructure:"user_agent"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	Backend        string `mapstructure:"backend"` // none | pushgateway | datadog
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr"`
	Job            string `mapstructure:"job"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// envBindings maps viper keys to the environment variables the loaders have
// always used. Names are kept as-is so existing deployments keep working.
var envBindings = map[string]string{
	"db_path":                 "OBDB_DUCKDB_PATH",
	"storage_kind":            "OBDB_STORAGE_KIND",
	"obdb_csv_url":            "OBDB_CSV_URL",
	"ba_json_url":             "BA_JSON_URL",
	"ba_local_json_path":      "BA_JSON_LOCAL_PATH",
	"obdb_table":              "OBDB_TABLE",
	"ba_table":                "BA_TABLE",
	"enable_spatial":          "OBDB_ENABLE_SPATIAL",
	"batch_size":              "OBDB_BATCH_SIZE",
	"fetch.timeout":           "OBDB_FETCH_TIMEOUT",
	"fetch.retries":           "OBDB_FETCH_RETRIES",
	"fetch.backoff":           "OBDB_FETCH_BACKOFF",
	"fetch.max_backoff":       "OBDB_FETCH_MAX_BACKOFF",
	"fetch.user_agent":        "OBDB_USER_AGENT",
	"metrics.backend":         "METRICS_BACKEND",
	"metrics.pushgateway_url": "PUSHGATEWAY_URL",
	"metrics.datadog_addr":    "DD_DOGSTATSD_ADDR",
	"metrics.job":             "OBDB_JOB",
	"log.level":               "OBDB_LOG_LEVEL",
	"log.format":              "OBDB_LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("storage_kind", DefaultStorageKind)
	v.SetDefault("obdb_csv_url", DefaultOBDBCSVURL)
	v.SetDefault("ba_json_url", DefaultBAJSONURL)
	v.SetDefault("ba_local_json_path", DefaultBALocalJSONPath)
	v.SetDefault("obdb_table", DefaultOBDBTable)
	v.SetDefault("ba_table", DefaultBATable)
	v.SetDefault("enable_spatial", true)
	v.SetDefault("batch_size", 1000)

	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("fetch.backoff", 2*time.Second)
	v.SetDefault("fetch.max_backoff", 30*time.Second)
	v.SetDefault("fetch.user_agent", DefaultUserAgent)

	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.pushgateway_url", "http://localhost:9091")
	v.SetDefault("metrics.datadog_addr", "127.0.0.1:8125")
	v.SetDefault("metrics.job", DefaultJob)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load builds Settings from defaults, the optional config file at path, and
// the process environment, in increasing order of precedence. An empty path
// skips the file; a non-empty path that cannot be read is an error.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	s.StorageKind = strings.ToLower(strings.TrimSpace(s.StorageKind))
	s.Metrics.Backend = strings.ToLower(strings.TrimSpace(s.Metrics.Backend))
	return &s, nil
}
