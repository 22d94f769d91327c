package testsupport

import (
	"path/filepath"
	"testing"

	"pdf2ofx/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Extraction.APIKey = "test"
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.OutputDir = filepath.Join(base, "ofx")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LedgerPath = filepath.Join(base, "ledger.db")
	cfgVal.Account.AccountID = "TESTACCT"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithAccount overrides the account identifiers on the test config.
func WithAccount(accountID, bankID string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Account.AccountID = accountID
		b.cfg.Account.BankID = bankID
	}
}

// WithOFXVersion sets the emitted OFX dialect on the test config.
func WithOFXVersion(version string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OFX.Version = version
	}
}

// WithAutoAccept enables the automatic accept path for clean statements.
func WithAutoAccept() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Review.AutoAcceptClean = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
