package etl

import (
	"brewetl/internal/config"
	"brewetl/internal/parser"
	"brewetl/internal/transformer"
	"brewetl/internal/transformer/builtin"
)

// Source names recorded in ingest_runs.
const (
	SourceOBDB = "obdb_csv"
	SourceBA   = "ba_json"
)

// Human names used in validation messages and logs.
const (
	ContextOBDB = "Open Brewery DB CSV"
	ContextBA   = "Brewers Association JSON"
)

// SpatialExtension is loaded before the BA load when spatial support is on.
const SpatialExtension = "spatial"

// OBDBRequiredColumns lists the columns the Open Brewery DB feed must carry.
var OBDBRequiredColumns = []string{
	"id",
	"name",
	"brewery_type",
	"address_1",
	"address_2",
	"address_3",
	"city",
	"state_province",
	"postal_code",
	"country",
	"phone",
	"website_url",
	"longitude",
	"latitude",
}

// Job describes one loader run.
type Job struct {
	Source  string // ingest_runs.source
	Context string // display name for messages
	URL     string
	Format  parser.Format
	Table   string

	// CachePath, when set, is read instead of URL if the file exists;
	// otherwise the download is saved there.
	CachePath string

	// Checks run after normalization, in order.
	Checks transformer.Chain

	// Spatial loads SpatialExtension before the table is written.
	Spatial bool
}

// OBDBJob returns the Open Brewery DB CSV loader.
func OBDBJob(s config.Settings) Job {
	return Job{
		Source:  SourceOBDB,
		Context: ContextOBDB,
		URL:     s.OBDBCSVURL,
		Format:  parser.FormatCSV,
		Table:   s.OBDBTable,
		Checks: transformer.Chain{
			builtin.NonEmpty{Context: ContextOBDB},
			builtin.RequireColumns{Columns: OBDBRequiredColumns, Context: ContextOBDB},
			builtin.NotAllNull{Columns: []string{"latitude", "longitude"}, Context: ContextOBDB},
		},
	}
}

// BAJob returns the Brewers Association JSON loader.
func BAJob(s config.Settings) Job {
	return Job{
		Source:    SourceBA,
		Context:   ContextBA,
		URL:       s.BAJSONURL,
		Format:    parser.FormatJSON,
		Table:     s.BATable,
		CachePath: s.BALocalJSONPath,
		Checks:    transformer.Chain{builtin.NonEmpty{Context: ContextBA}},
		Spatial:   s.EnableSpatial,
	}
}
