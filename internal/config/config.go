package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/plaid"
	"github.com/Veraticus/wealth-builder/internal/sheets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default Plaid settings used when neither the config file nor the
// environment provides them.
const (
	DefaultEnvironment  = "sandbox"
	DefaultProducts     = "transactions"
	DefaultCountryCodes = "US"
)

// envBindings maps config keys to the environment variables read at startup.
var envBindings = map[string]string{
	"plaid.client_id":     "PLAID_CLIENT_ID",
	"plaid.secret":        "PLAID_SECRET",
	"plaid.environment":   "PLAID_ENV",
	"plaid.products":      "PLAID_PRODUCTS",
	"plaid.country_codes": "PLAID_COUNTRY_CODES",
	"plaid.redirect_uri":  "PLAID_REDIRECT_URI",
	"plaid.access_token":  "PLAID_ACCESS_TOKEN",
	"plaid.base_url":      "PLAID_BASE_URL",

	"sheets.service_account_path": "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
	"sheets.client_id":            "GOOGLE_SHEETS_CLIENT_ID",
	"sheets.client_secret":        "GOOGLE_SHEETS_CLIENT_SECRET",
	"sheets.refresh_token":        "GOOGLE_SHEETS_REFRESH_TOKEN",
	"sheets.spreadsheet_id":       "GOOGLE_SHEETS_SPREADSHEET_ID",
	"sheets.spreadsheet_name":     "GOOGLE_SHEETS_SPREADSHEET_NAME",
}

// Config is the process-wide configuration, built once at startup.
type Config struct {
	Plaid  plaid.Config
	Sheets sheets.Config
	Bills  []model.Bill
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are skipped and variables already set are never overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		path = ExpandPath(path)
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		slog.Debug("Loaded environment file", "path", path)
	}
	return nil
}

// BindEnv registers the environment variable for every known key and the
// Plaid defaults.
func BindEnv(v *viper.Viper) {
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	v.SetDefault("plaid.environment", DefaultEnvironment)
	v.SetDefault("plaid.products", DefaultProducts)
	v.SetDefault("plaid.country_codes", DefaultCountryCodes)
}

// Load builds the configuration from v. Plaid credentials are checked later
// by plaid.NewClient so commands that never call Plaid work without them.
func Load(v *viper.Viper) (*Config, error) {
	bills, err := LoadBills(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Plaid: plaid.Config{
			ClientID:     v.GetString("plaid.client_id"),
			Secret:       v.GetString("plaid.secret"),
			Environment:  strings.ToLower(v.GetString("plaid.environment")),
			Products:     listValue(v, "plaid.products"),
			CountryCodes: listValue(v, "plaid.country_codes"),
			RedirectURI:  v.GetString("plaid.redirect_uri"),
			AccessToken:  v.GetString("plaid.access_token"),
			BaseURL:      v.GetString("plaid.base_url"),
		},
		Sheets: LoadSheetsConfig(v),
		Bills:  bills,
	}, nil
}

// SplitList splits a comma-separated value, dropping blanks.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// listValue reads a key that may be a YAML list or a comma-separated string.
func listValue(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return SplitList(s)
	}
	return v.GetStringSlice(key)
}
