// Package datasource defines where raw feed bytes come from. Implementations
// live in subpackages: httpds for remote feeds, file for the local cache.
package datasource

import (
	"context"
	"io"
)

// Source yields a readable payload. Callers must close the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Fetcher downloads a whole remote payload. *httpds.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
