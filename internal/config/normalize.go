package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeAccount()
	c.normalizeOFX()
	c.normalizeRetention()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = defaultLedgerPath
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.APIKey = strings.TrimSpace(c.Extraction.APIKey)
	if c.Extraction.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Extraction.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
			c.Extraction.APIKey = strings.TrimSpace(value)
		}
	}
	c.Extraction.Model = strings.TrimSpace(c.Extraction.Model)
	if c.Extraction.Model == "" {
		c.Extraction.Model = defaultExtractionModel
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		c.Extraction.TimeoutSeconds = defaultExtractionTimeout
	}
	if c.Extraction.MaxAttempts <= 0 {
		c.Extraction.MaxAttempts = defaultMaxAttempts
	}
}

func (c *Config) normalizeAccount() {
	c.Account.AccountID = strings.TrimSpace(c.Account.AccountID)
	c.Account.BankID = strings.TrimSpace(c.Account.BankID)
	if c.Account.BankID == "" {
		c.Account.BankID = defaultBankID
	}
	c.Account.AccountType = strings.ToUpper(strings.TrimSpace(c.Account.AccountType))
	if c.Account.AccountType == "" {
		c.Account.AccountType = defaultAccountType
	}
	c.Account.Currency = strings.ToUpper(strings.TrimSpace(c.Account.Currency))
	if c.Account.Currency == "" {
		c.Account.Currency = defaultCurrency
	}
}

func (c *Config) normalizeOFX() {
	c.OFX.Version = strings.TrimSpace(c.OFX.Version)
	if c.OFX.Version == "" {
		c.OFX.Version = defaultOFXVersion
	}
	c.OFX.Org = strings.TrimSpace(c.OFX.Org)
	c.OFX.FID = strings.TrimSpace(c.OFX.FID)
}

func (c *Config) normalizeRetention() {
	if c.Retention.StaleAfterDays <= 0 {
		c.Retention.StaleAfterDays = defaultStaleAfterDays
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
