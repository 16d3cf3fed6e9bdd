package ddl

import (
	"strings"
	"testing"
)

// TestBuildCreateTableSQL verifies rendering and the input checks using
// table-driven subtests.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		verb        string
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{FQN: " ", Columns: []ColumnDef{{Name: "id", SQLType: "BIGINT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "", SQLType: "BIGINT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "column with empty type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing SQLType",
		},
		{
			name:    "default verb",
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id", SQLType: "BIGINT", Nullable: true}}},
			wantSQL: "CREATE TABLE \"t\" (\n  \"id\" BIGINT\n);",
		},
		{
			name: "or replace with not null and qualified name",
			verb: CreateOrReplace,
			def: TableDef{
				FQN: "main.raw_obdb_breweries",
				Columns: []ColumnDef{
					{Name: "id", SQLType: "VARCHAR", Nullable: false},
					{Name: "latitude", SQLType: "DOUBLE", Nullable: true},
				},
			},
			wantSQL: "CREATE OR REPLACE TABLE \"main\".\"raw_obdb_breweries\" (\n  \"id\" VARCHAR NOT NULL,\n  \"latitude\" DOUBLE\n);",
		},
		{
			name:    "names with spaces and quotes are quoted",
			verb:    CreateIfNotExists,
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: `Brewery "Type"`, SQLType: "TEXT", Nullable: true}}},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"t\" (\n  \"Brewery \"\"Type\"\"\" TEXT\n);",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildCreateTableSQL(tt.verb, tt.def)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("err = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, tt.wantSQL)
			}
		})
	}
}

func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"t":          `"t"`,
		"main.t":     `"main"."t"`,
		" main . t ": `"main"."t"`,
		"a..b":       `"a"."b"`,
	}
	for in, want := range cases {
		if got := QuoteFQN(in); got != want {
			t.Fatalf("QuoteFQN(%q) = %q, want %q", in, got, want)
		}
	}
}
