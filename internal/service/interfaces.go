// Package service defines the interfaces shared between the data sources and their consumers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/wealth-builder/internal/model"
)

// TransactionSource fetches the transactions posted within a date window.
type TransactionSource interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
}

// AccountSource is the capability set of the account data gateway.
// It lets the history fetcher and the CLI run against a substitute in tests.
type AccountSource interface {
	TransactionSource
	ListAccounts(ctx context.Context) ([]model.Account, error)
	GetBalances(ctx context.Context) ([]model.Balance, error)
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String formats the range for logs and report titles.
func (r DateRange) String() string {
	return r.Start.Format("2006-01-02") + " to " + r.End.Format("2006-01-02")
}
