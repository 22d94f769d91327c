package testsupport

import (
	"testing"

	"pdf2ofx/internal/artifacts"
	"pdf2ofx/internal/config"
	"pdf2ofx/internal/ledger"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenArtifacts opens the staging artifact store rooted at the test
// config's staging directory.
func MustOpenArtifacts(t testing.TB, cfg *config.Config) *artifacts.Store {
	t.Helper()

	store, err := artifacts.NewStore(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("artifacts.NewStore: %v", err)
	}
	return store
}
