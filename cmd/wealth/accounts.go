package main

import (
	"context"
	"io"

	"github.com/Veraticus/wealth-builder/internal/report"
	"github.com/Veraticus/wealth-builder/internal/service"
	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List linked accounts with their available balance",
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
			return runAccounts(cmd.Context(), cmd.OutOrStdout(), client, format)
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show real-time balances for linked accounts",
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
			return runBalance(cmd.Context(), cmd.OutOrStdout(), client, format)
		},
	}
}

func runAccounts(ctx context.Context, w io.Writer, source service.AccountSource, format report.Format) error {
	accounts, err := source.ListAccounts(ctx)
	if err != nil {
		return err
	}
	return report.Write(w, format, report.AccountsTable(accounts))
}

func runBalance(ctx context.Context, w io.Writer, source service.AccountSource, format report.Format) error {
	balances, err := source.GetBalances(ctx)
	if err != nil {
		return err
	}
	return report.Write(w, format, report.BalancesTable(balances))
}
