package main

import (
	"context"
	"io"
	"os"

	"github.com/Veraticus/wealth-builder/internal/cli"
	"github.com/Veraticus/wealth-builder/internal/history"
	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/report"
	"github.com/Veraticus/wealth-builder/internal/service"
	"github.com/spf13/cobra"
)

type historyOptions struct {
	unit    string
	periods int
}

func (o *historyOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.unit, "unit", "m", "period unit: d (days) or m (months)")
	cmd.Flags().IntVar(&o.periods, "periods", 1, "number of periods to look back")
}

func historyCmd() *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Fetch transaction history for the last N periods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newPlaidClient(cfg)
			if err != nil {
				return err
			}

			transactions, err := fetchHistory(cmd.Context(), client, opts, os.Stderr)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), format, report.TransactionsTable(transactions))
		},
	}

	opts.addFlags(cmd)
	return cmd
}

// fetchHistory runs the windowed history fetch with a progress bar on
// progress, or silently when progress is nil.
func fetchHistory(ctx context.Context, source service.TransactionSource, opts historyOptions,
	progress io.Writer, fetchOpts ...history.Option) ([]model.Transaction, error) {
	unit, err := history.ParseUnit(opts.unit)
	if err != nil {
		return nil, err
	}

	if progress != nil {
		fetchOpts = append(fetchOpts, history.WithProgress(cli.ProgressHook(progress, "Fetching history...")))
	}

	return history.NewFetcher(source, fetchOpts...).FetchHistory(ctx, unit, opts.periods)
}
