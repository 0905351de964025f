package ofx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/service"
)

// FileSource serves transactions read from OFX files as if they came from
// the Plaid gateway, so the same windowed history fetch runs offline.
type FileSource struct {
	transactions []model.Transaction
}

// NewFileSource wraps an in-memory transaction list.
func NewFileSource(transactions []model.Transaction) *FileSource {
	return &FileSource{transactions: transactions}
}

// LoadFiles parses every path, expanding glob patterns, into one FileSource.
func LoadFiles(ctx context.Context, patterns []string) (*FileSource, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("No files found matching pattern", "pattern", pattern)
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no OFX files found")
	}

	parser := NewParser()
	var all []model.Transaction
	for _, path := range files {
		txs, err := parseFile(ctx, parser, path)
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}

	return NewFileSource(all), nil
}

func parseFile(ctx context.Context, parser *Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path) // #nosec G304 -- user supplied statement file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	txs, err := parser.ParseFile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return txs, nil
}

// GetTransactions returns the transactions dated in [startDate, endDate).
func (s *FileSource) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Compare calendar dates; OFX dates are stored at UTC midnight.
	start, end := utcDay(startDate), utcDay(endDate)

	out := []model.Transaction{}
	for _, tx := range s.transactions {
		if !tx.Date.Before(start) && tx.Date.Before(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// All returns every loaded transaction.
func (s *FileSource) All() []model.Transaction {
	return s.transactions
}

var _ service.TransactionSource = (*FileSource)(nil)
