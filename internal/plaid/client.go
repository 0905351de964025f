// Package plaid provides a client for interacting with the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/wealth-builder/internal/common"
	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/Veraticus/wealth-builder/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
)

// TransactionsPageSize is the number of transactions requested per window.
// Plaid pages beyond this are not fetched.
const TransactionsPageSize = 500

var environments = map[string]plaid.Environment{
	"sandbox":     plaid.Sandbox,
	"development": plaid.Environment("https://development.plaid.com"),
	"production":  plaid.Production,
}

// Config holds Plaid API configuration.
type Config struct {
	ClientID     string
	Secret       string
	Environment  string // sandbox, development, or production
	RedirectURI  string
	AccessToken  string
	BaseURL      string // overrides the environment host when set
	Products     []string
	CountryCodes []string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	if c.Environment == "" {
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	}
	if _, ok := environments[c.Environment]; !ok {
		return fmt.Errorf("%w: invalid Plaid environment %q: must be sandbox, development or production",
			common.ErrInvalidConfig, c.Environment)
	}

	for _, p := range c.Products {
		if !plaid.Products(p).IsValid() {
			return fmt.Errorf("%w: unknown Plaid product %q", common.ErrInvalidConfig, p)
		}
	}
	for _, cc := range c.CountryCodes {
		if !plaid.CountryCode(strings.ToUpper(cc)).IsValid() {
			return fmt.Errorf("%w: unknown country code %q", common.ErrInvalidConfig, cc)
		}
	}

	return nil
}

// Client is the account data gateway backed by the Plaid API.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	accessToken string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	if cfg.BaseURL != "" {
		configuration.UseEnvironment(plaid.Environment(cfg.BaseURL))
	} else {
		configuration.UseEnvironment(environments[cfg.Environment])
	}

	logger := slog.Default().With("component", "plaid", "environment", cfg.Environment)
	logger.Debug("Configured Plaid client",
		"products", cfg.Products,
		"country_codes", cfg.CountryCodes)

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      logger,
	}, nil
}

// ListAccounts fetches every account linked to the access token.
func (c *Client) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	c.logger.Info("Fetching accounts from Plaid")

	request := plaid.NewAccountsGetRequest(c.accessToken)
	resp, httpResp, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, normalizeError("fetch accounts", httpResp, err)
	}

	accounts := make([]model.Account, 0, len(resp.GetAccounts()))
	for _, account := range resp.GetAccounts() {
		accounts = append(accounts, mapAccount(account))
	}

	c.logger.Info("Fetched accounts", "count", len(accounts))

	return accounts, nil
}

// GetBalances fetches real-time balances for every linked account.
func (c *Client) GetBalances(ctx context.Context) ([]model.Balance, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	c.logger.Info("Fetching balances from Plaid")

	request := plaid.NewAccountsBalanceGetRequest(c.accessToken)
	resp, httpResp, err := c.client.PlaidApi.AccountsBalanceGet(ctx).AccountsBalanceGetRequest(*request).Execute()
	if err != nil {
		return nil, normalizeError("fetch balances", httpResp, err)
	}

	balances := make([]model.Balance, 0, len(resp.GetAccounts()))
	for _, account := range resp.GetAccounts() {
		a := mapAccount(account)
		balances = append(balances, model.Balance{
			AccountID: a.ID,
			Currency:  a.Currency,
			Available: a.Available,
			Current:   a.Current,
		})
	}

	return balances, nil
}

// GetTransactions fetches at most TransactionsPageSize transactions posted
// between startDate and endDate.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format("2006-01-02"),
		"end_date", endDate.Format("2006-01-02"))

	request := plaid.NewTransactionsGetRequest(
		c.accessToken,
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
	)
	request.SetOptions(plaid.TransactionsGetRequestOptions{
		Count: plaid.PtrInt32(TransactionsPageSize),
	})

	resp, httpResp, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, normalizeError("fetch transactions", httpResp, err)
	}

	plaidTransactions := resp.GetTransactions()
	if total := int(resp.GetTotalTransactions()); total > len(plaidTransactions) {
		c.logger.Warn("Transaction window truncated, later pages are not fetched",
			"returned", len(plaidTransactions),
			"total", total,
			"start_date", startDate.Format("2006-01-02"))
	}

	transactions := make([]model.Transaction, 0, len(plaidTransactions))
	for _, pt := range plaidTransactions {
		tx, err := mapTransaction(pt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	c.logger.Debug("Fetched transaction batch", "count", len(transactions))

	return transactions, nil
}

func mapAccount(account plaid.AccountBase) model.Account {
	balances := account.GetBalances()
	return model.Account{
		ID:        account.GetAccountId(),
		Name:      account.GetName(),
		Currency:  balances.GetIsoCurrencyCode(),
		Available: decimal.NewFromFloat(balances.GetAvailable()),
		Current:   decimal.NewFromFloat(balances.GetCurrent()),
	}
}

// mapTransaction converts a Plaid transaction to our internal model.
func mapTransaction(pt plaid.Transaction) (model.Transaction, error) {
	date, err := time.Parse("2006-01-02", pt.GetDate())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: transaction %s has date %q",
			common.ErrUnexpectedShape, pt.GetTransactionId(), pt.GetDate())
	}

	return model.Transaction{
		Date:         date,
		ID:           pt.GetTransactionId(),
		AccountID:    pt.GetAccountId(),
		Name:         pt.GetName(),
		MerchantName: pt.GetMerchantName(),
		Amount:       decimal.NewFromFloat(pt.GetAmount()),
		CategoryID:   pt.GetCategoryId(),
		Category:     pt.GetCategory(),
		Pending:      pt.GetPending(),
	}, nil
}

// Ensure Client implements the gateway interface.
var _ service.AccountSource = (*Client)(nil)
