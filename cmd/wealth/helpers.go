package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Veraticus/wealth-builder/internal/analysis"
	"github.com/Veraticus/wealth-builder/internal/cli"
	"github.com/Veraticus/wealth-builder/internal/config"
	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/plaid"
	"github.com/Veraticus/wealth-builder/internal/report"
	"github.com/spf13/viper"
)

// loadConfig collects the process configuration from viper.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newPlaidClient builds the Plaid gateway from the loaded configuration.
func newPlaidClient(cfg *config.Config) (*plaid.Client, error) {
	client, err := plaid.NewClient(&cfg.Plaid)
	if err != nil {
		return nil, fmt.Errorf("failed to create Plaid client: %w", err)
	}
	return client, nil
}

// outputFormat returns the --output format.
func outputFormat() (report.Format, error) {
	return report.ParseFormat(viper.GetString("output"))
}

// newAnalyzer registers bills with a fresh analyzer.
func newAnalyzer(bills []model.Bill) (*analysis.Analyzer, error) {
	analyzer := analysis.NewAnalyzer()
	for _, bill := range bills {
		if err := analyzer.AddBill(bill); err != nil {
			return nil, err
		}
	}
	return analyzer, nil
}

// occurrenceTables returns one occurrence table per bill activity.
func occurrenceTables(activities []model.BillActivity) []report.Table {
	tables := make([]report.Table, 0, len(activities))
	for _, activity := range activities {
		tables = append(tables, report.OccurrenceTable(activity))
	}
	return tables
}

// defaultConfigPath is where bills are written when no config file exists yet.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "wealth", "config.yaml"), nil
}

// reportError prints a failed command's error. In JSON mode a Plaid API error
// is written to stdout as its {"error": ...} mapping.
func reportError(stdout, stderr io.Writer, output string, err error) {
	if output == string(report.FormatJSON) {
		if resp := plaid.ErrorResponse(err); resp != nil {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(resp); encErr == nil {
				return
			}
		}
	}
	_, _ = fmt.Fprintln(stderr, cli.FormatError(err.Error()))
}
