package httpds

import (
	"bytes"
	"context"
	"io"

	"brewetl/internal/datasource"
)

// Source adapts a Fetcher (normally a *Client) and URL to datasource.Source.
// The whole payload is fetched under the retry policy before Open returns.
type Source struct {
	client datasource.Fetcher
	url    string
}

var _ datasource.Source = (*Source)(nil)

// NewSource returns a Source for url.
func NewSource(client datasource.Fetcher, url string) *Source {
	return &Source{client: client, url: url}
}

// URL returns the remote location.
func (s *Source) URL() string { return s.url }

// Open downloads the payload and returns it as an in-memory reader.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	data, err := s.client.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
