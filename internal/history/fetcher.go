package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/service"
)

// Fetcher aggregates transaction history across consecutive query windows.
type Fetcher struct {
	source   service.TransactionSource
	logger   *slog.Logger
	now      func() time.Time
	onWindow func(done, total int)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClock replaces time.Now as the reference point for window computation.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// WithProgress registers a hook called after each window has been fetched.
func WithProgress(fn func(done, total int)) Option {
	return func(f *Fetcher) {
		f.onWindow = fn
	}
}

// NewFetcher creates a history fetcher reading from source.
func NewFetcher(source service.TransactionSource, opts ...Option) *Fetcher {
	f := &Fetcher{
		source: source,
		logger: slog.Default().With("component", "history"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Windows returns the query windows FetchHistory would issue for unit and count.
// Every window spans one month from its start date, whatever the step unit.
// With day steps consecutive windows overlap and the same transaction is
// returned by several of them.
func (f *Fetcher) Windows(unit Unit, count int) []service.DateRange {
	starts := ComputeDateWindows(unit, count, f.now())
	windows := make([]service.DateRange, 0, len(starts))
	for _, start := range starts {
		windows = append(windows, service.DateRange{Start: start, End: AddMonths(start, 1)})
	}
	return windows
}

// FetchHistory queries every window in turn and concatenates the batches in
// window order. The first failing window aborts the whole fetch.
func (f *Fetcher) FetchHistory(ctx context.Context, unit Unit, count int) ([]model.Transaction, error) {
	windows := f.Windows(unit, count)

	if unit == Day && len(windows) > 1 {
		f.logger.Warn("Day stepping with one-month windows returns overlapping transactions",
			"windows", len(windows))
	}

	var all []model.Transaction
	for i, window := range windows {
		batch, err := f.source.GetTransactions(ctx, window.Start, window.End)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch window %s: %w", window, err)
		}

		f.logger.Debug("Fetched window", "window", window.String(), "count", len(batch))
		all = append(all, batch...)

		if f.onWindow != nil {
			f.onWindow(i+1, len(windows))
		}
	}

	if all == nil {
		all = []model.Transaction{}
	}

	f.logger.Info("Fetched transaction history", "windows", len(windows), "count", len(all))

	return all, nil
}
