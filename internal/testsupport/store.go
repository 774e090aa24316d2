package testsupport

import (
	"testing"

	"stravagpx/internal/logging"
	"stravagpx/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, path string) *store.Store {
	t.Helper()

	st, err := store.Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}
