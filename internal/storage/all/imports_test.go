package all

import (
	"testing"

	"brewetl/internal/storage"
)

func TestBackendsRegistered(t *testing.T) {
	kinds := map[string]bool{}
	for _, k := range storage.ListKinds() {
		kinds[k] = true
	}
	for _, want := range []string{"duckdb", "postgres", "sqlite"} {
		if !kinds[want] {
			t.Fatalf("backend %q not registered; have %v", want, storage.ListKinds())
		}
	}
}
