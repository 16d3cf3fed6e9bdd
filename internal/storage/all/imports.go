// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: a blank import runs each backend's init,
// which registers its factory. After
//
//	import _ "brewetl/internal/storage/all"
//
// storage.New accepts Kind "duckdb", "sqlite" and "postgres". A binary that needs only one
// backend can import that backend package directly instead.
package all

import (
	_ "brewetl/internal/storage/duckdb"
	_ "brewetl/internal/storage/postgres"
	_ "brewetl/internal/storage/sqlite"
)
