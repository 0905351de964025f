package config

import (
	"github.com/Veraticus/wealth-builder/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration from v, which also sees
// the GOOGLE_SHEETS_* environment variables once BindEnv has run.
func LoadSheetsConfig(v *viper.Viper) sheets.Config {
	config := sheets.DefaultConfig()

	if p := v.GetString("sheets.service_account_path"); p != "" {
		config.ServiceAccountPath = ExpandPath(p)
	}
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.timezone"); tz != "" {
		config.TimeZone = tz
	}

	return config
}
