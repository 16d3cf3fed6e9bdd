package ddl

// ColumnDef describes a single column in a table definition.
//
// Name is the logical column name, unquoted; quoting happens at render time.
// SQLType is the dialect type (e.g. BIGINT, VARCHAR, TIMESTAMPTZ).
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the table name and an ordered list of columns. FQN may be
// schema-qualified ("main.raw_obdb_breweries"); each segment is quoted
// separately.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
