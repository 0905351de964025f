package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/service"
)

// MockClient is a substitute account data gateway for tests.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	GetTransactionsFn func(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	ListAccountsFn    func(ctx context.Context) ([]model.Account, error)
	GetBalancesFn     func(ctx context.Context) ([]model.Balance, error)

	// Call tracking
	GetTransactionsCalls []GetTransactionsCall
	ListAccountsCalls    int
	GetBalancesCalls     int
}

// GetTransactionsCall records the parameters of a GetTransactions call.
type GetTransactionsCall struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{
		GetTransactionsCalls: []GetTransactionsCall{},
	}
}

// GetTransactions implements service.TransactionSource.
func (m *MockClient) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, GetTransactionsCall{
		StartDate: startDate,
		EndDate:   endDate,
	})

	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, startDate, endDate)
	}

	return []model.Transaction{}, nil
}

// ListAccounts implements service.AccountSource.
func (m *MockClient) ListAccounts(ctx context.Context) ([]model.Account, error) {
	m.ListAccountsCalls++

	if m.ListAccountsFn != nil {
		return m.ListAccountsFn(ctx)
	}

	return []model.Account{}, nil
}

// GetBalances implements service.AccountSource.
func (m *MockClient) GetBalances(ctx context.Context) ([]model.Balance, error) {
	m.GetBalancesCalls++

	if m.GetBalancesFn != nil {
		return m.GetBalancesFn(ctx)
	}

	return []model.Balance{}, nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.GetTransactionsCalls = []GetTransactionsCall{}
	m.ListAccountsCalls = 0
	m.GetBalancesCalls = 0
}

// Ensure MockClient implements the gateway interface.
var _ service.AccountSource = (*MockClient)(nil)
