package store

import "testing"

// NewTestStore opens an in-memory store and closes it when the test ends.
// This is only intended for use in tests.
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
