package config

const (
	defaultStagingDir        = "~/.local/share/pdf2ofx/staging"
	defaultOutputDir         = "~/ofx"
	defaultLogDir            = "~/.local/share/pdf2ofx/logs"
	defaultLedgerPath        = "~/.local/share/pdf2ofx/ledger.db"
	defaultExtractionModel   = "gemini-2.5-flash"
	defaultExtractionTimeout = 180
	defaultMaxAttempts       = 3
	defaultBankID            = "DUMMY"
	defaultAccountType       = "CHECKING"
	defaultCurrency          = "EUR"
	defaultOFXVersion        = "2"
	defaultStaleAfterDays    = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			LedgerPath: defaultLedgerPath,
		},
		Extraction: Extraction{
			Model:          defaultExtractionModel,
			TimeoutSeconds: defaultExtractionTimeout,
			MaxAttempts:    defaultMaxAttempts,
		},
		Account: Account{
			BankID:      defaultBankID,
			AccountType: defaultAccountType,
			Currency:    defaultCurrency,
		},
		OFX: OFX{
			Version: defaultOFXVersion,
		},
		Retention: Retention{
			StaleAfterDays: defaultStaleAfterDays,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
