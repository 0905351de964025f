package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Veraticus/wealth-builder/internal/cli"
	"github.com/Veraticus/wealth-builder/internal/common"
	"github.com/Veraticus/wealth-builder/internal/config"
	"github.com/Veraticus/wealth-builder/internal/history"
	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/ofx"
	"github.com/Veraticus/wealth-builder/internal/report"
	"github.com/Veraticus/wealth-builder/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Manage and analyze recurring bills",
	}

	cmd.AddCommand(billsListCmd())
	cmd.AddCommand(billsAddCmd())
	cmd.AddCommand(billsAnalyzeCmd())

	return cmd
}

func billsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the configured bills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(cfg.Bills)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), format, report.BillsTable(analyzer.ListBills()))
		},
	}
}

type billFlags struct {
	name      string
	merchant  string
	regex     string
	dueDate   string
	period    string
	amount    string
	frequency int
}

func (f billFlags) bill() (model.Bill, error) {
	bill := model.Bill{
		Name:         f.name,
		MerchantName: f.merchant,
		Regex:        f.regex,
		DueDate:      f.dueDate,
		Period:       f.period,
		Frequency:    f.frequency,
	}.WithDefaults()

	if f.amount != "" {
		amount, err := decimal.NewFromString(f.amount)
		if err != nil {
			return model.Bill{}, common.NewUserError(fmt.Sprintf("invalid amount %q", f.amount), err)
		}
		bill.Amount = amount
	}

	return bill, nil
}

func billsAddCmd() *cobra.Command {
	var flags billFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recurring bill to the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bill, err := flags.bill()
			if err != nil {
				return err
			}
			return runBillsAdd(cmd.OutOrStdout(), viper.ConfigFileUsed(), bill)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "bill name")
	cmd.Flags().StringVar(&flags.merchant, "merchant", "", "merchant name as it appears on transactions")
	cmd.Flags().StringVar(&flags.regex, "regex", "", "pattern matched against transaction names")
	cmd.Flags().StringVar(&flags.dueDate, "due-date", "", "due date as you want it shown, e.g. 2024-03-15 or \"1st of month\"")
	cmd.Flags().StringVar(&flags.period, "period", model.DefaultBillPeriod, "billing period")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "expected amount")
	cmd.Flags().IntVar(&flags.frequency, "frequency", model.DefaultBillFrequency, "occurrences per period")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runBillsAdd(w io.Writer, path string, bill model.Bill) error {
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.AddBill(path, bill); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Added bill %q to %s", bill.Name, path)))
	return err
}

func billsAnalyzeCmd() *cobra.Command {
	var (
		opts     historyOptions
		ofxFiles []string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show how often each configured bill appears in recent history",
		Long: `Fetches transaction history from Plaid, or reads it from OFX/QFX exports
when --ofx is given, and prints one occurrence table per configured bill.
Both sources are limited to the --unit/--periods look-back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Bills) == 0 {
				return common.NewUserError("add a bill with 'wealth bills add' first", common.ErrNoBills)
			}

			var transactions []model.Transaction
			if len(ofxFiles) > 0 {
				transactions, err = ofxHistory(cmd.Context(), ofxFiles, opts, os.Stderr)
				if err != nil {
					return err
				}
			} else {
				client, err := newPlaidClient(cfg)
				if err != nil {
					return err
				}
				transactions, err = fetchHistory(cmd.Context(), client, opts, os.Stderr)
				if err != nil {
					return err
				}
			}

			return runBillsAnalyze(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Bills, transactions, format)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringSliceVar(&ofxFiles, "ofx", nil, "OFX/QFX files or glob patterns to analyze instead of Plaid")

	return cmd
}

// runBillsAnalyze writes one occurrence table per bill to w and a warning to
// errW for every bill that matched nothing.
func runBillsAnalyze(w, errW io.Writer, bills []model.Bill, transactions []model.Transaction, format report.Format) error {
	analyzer, err := newAnalyzer(bills)
	if err != nil {
		return err
	}

	activities := analyzer.FindBillsInPeriod(transactions)
	for _, activity := range activities {
		if !activity.Found() {
			_, _ = fmt.Fprintln(errW, cli.FormatWarning(fmt.Sprintf("No transactions matched bill %q", activity.Bill.Name)))
		}
	}

	return report.Write(w, format, occurrenceTables(activities)...)
}

// ofxHistory loads OFX exports and runs the same windowed history fetch over
// them that the Plaid path uses.
func ofxHistory(ctx context.Context, patterns []string, opts historyOptions, progress io.Writer,
	fetchOpts ...history.Option) ([]model.Transaction, error) {
	files, err := ofx.LoadFiles(ctx, patterns)
	if err != nil {
		return nil, err
	}
	return fetchHistory(ctx, files, opts, progress, fetchOpts...)
}

// analyzeSource fetches history from source and analyzes every bill.
func analyzeSource(ctx context.Context, source service.TransactionSource, bills []model.Bill,
	opts historyOptions) ([]model.BillActivity, error) {
	analyzer, err := newAnalyzer(bills)
	if err != nil {
		return nil, err
	}
	transactions, err := fetchHistory(ctx, source, opts, nil)
	if err != nil {
		return nil, err
	}
	return analyzer.FindBillsInPeriod(transactions), nil
}
