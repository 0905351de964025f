package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/wealth-builder/internal/cli"
	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/report"
	"github.com/Veraticus/wealth-builder/internal/service"
	"github.com/Veraticus/wealth-builder/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export accounts and bill activity to Google Sheets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newPlaidClient(cfg)
			if err != nil {
				return err
			}
			writer, err := sheets.NewWriter(cmd.Context(), cfg.Sheets)
			if err != nil {
				return fmt.Errorf("failed to create sheets writer: %w", err)
			}
			return runExport(cmd.Context(), cmd.OutOrStdout(), client, writer, cfg.Bills, opts)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

// runExport writes the accounts, the bill report, the combined bill activity
// and one occurrence tab per bill.
func runExport(ctx context.Context, w io.Writer, source service.AccountSource, writer sheets.TableWriter,
	bills []model.Bill, opts historyOptions) error {
	accounts, err := source.ListAccounts(ctx)
	if err != nil {
		return err
	}

	tables := []report.Table{report.AccountsTable(accounts)}

	if len(bills) > 0 {
		activities, err := analyzeSource(ctx, source, bills, opts)
		if err != nil {
			return err
		}

		billReport := make([]map[string]any, 0, len(bills))
		for _, activity := range activities {
			billReport = append(billReport, activity.Bill.ToMap())
		}

		tables = append(tables, report.BillsTable(billReport), report.ActivityTable(activities))
		tables = append(tables, occurrenceTables(activities)...)
	}

	spreadsheetID, err := writer.WriteTables(ctx, tables)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Exported %d tables to spreadsheet %s", len(tables), spreadsheetID)))
	return err
}
