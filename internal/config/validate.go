package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateAccount(); err != nil {
		return err
	}
	if err := c.validateOFX(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/pdf2ofx/config.toml"
		}
		return fmt.Errorf("extraction.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'pdf2ofx config init')", defaultPath)
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		return errors.New("extraction.timeout_seconds must be positive")
	}
	if c.Extraction.MaxAttempts <= 0 {
		return errors.New("extraction.max_attempts must be positive")
	}
	return nil
}

func (c *Config) validateAccount() error {
	if len(c.Account.Currency) != 3 {
		return fmt.Errorf("account.currency must be a three-letter ISO code, got %q", c.Account.Currency)
	}
	switch c.Account.AccountType {
	case "CHECKING", "SAVINGS", "CREDITLINE", "MONEYMRKT":
		return nil
	default:
		return fmt.Errorf("account.account_type must be one of CHECKING, SAVINGS, CREDITLINE, MONEYMRKT, got %q", c.Account.AccountType)
	}
}

func (c *Config) validateOFX() error {
	switch c.OFX.Version {
	case "1", "2":
	default:
		return fmt.Errorf("ofx.version must be \"1\" (SGML) or \"2\" (XML), got %q", c.OFX.Version)
	}
	if strings.TrimSpace(c.OFX.Org) != "" && len(c.OFX.Org) > 32 {
		return errors.New("ofx.org must be at most 32 characters")
	}
	return nil
}
