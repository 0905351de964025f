// Package sheets exports report tables to a Google Spreadsheet.
package sheets

import (
	"fmt"

	"github.com/Veraticus/wealth-builder/internal/common"
)

// DefaultSpreadsheetName is the title used when a new spreadsheet is created.
const DefaultSpreadsheetName = "Wealth Report"

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  DefaultSpreadsheetName,
		EnableFormatting: true,
		TimeZone:         "America/New_York",
		BatchSize:        1000,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no Google Sheets authentication method configured", common.ErrMissingConfig)
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account",
			common.ErrInvalidConfig)
	}

	if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
		return fmt.Errorf("%w: spreadsheet ID or name is required", common.ErrMissingConfig)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}

	return nil
}
