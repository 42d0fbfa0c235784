package testutil

import (
	"testing"
	
	"github.com/katatrina/gundam-notification/internal/db/sqlite"
)

// NewTestStore creates an in-memory SQLite store with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T, opts ...sqlite.Option) *sqlite.Store {
	t.Helper()
	
	s, err := sqlite.NewStore(":memory:", opts...)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	
	return s
}
