package plaid

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/wealth-builder/internal/common"
	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountsFixture = `{
  "accounts": [
    {
      "account_id": "acc-checking",
      "balances": {
        "available": 1203.42,
        "current": 1250.10,
        "iso_currency_code": "USD",
        "limit": null,
        "unofficial_currency_code": null
      },
      "mask": "0000",
      "name": "Plaid Checking",
      "official_name": "Plaid Gold Standard 0% Interest Checking",
      "subtype": "checking",
      "type": "depository"
    },
    {
      "account_id": "acc-savings",
      "balances": {
        "available": 200,
        "current": 210,
        "iso_currency_code": "USD",
        "limit": null,
        "unofficial_currency_code": null
      },
      "mask": "1111",
      "name": "Plaid Saving",
      "official_name": "Plaid Silver Standard 0.1% Interest Saving",
      "subtype": "savings",
      "type": "depository"
    }
  ],
  "item": {
    "available_products": [],
    "billed_products": ["transactions"],
    "consent_expiration_time": null,
    "error": null,
    "institution_id": "ins_109508",
    "item_id": "item-1",
    "update_type": "background",
    "webhook": ""
  },
  "request_id": "req-1"
}`

const invalidTokenFixture = `{
  "display_message": null,
  "documentation_url": "https://plaid.com/docs/errors/invalid-input/",
  "error_code": "INVALID_ACCESS_TOKEN",
  "error_message": "provided access token is in an invalid format",
  "error_type": "INVALID_INPUT",
  "request_id": "req-2",
  "causes": [],
  "status": 400,
  "suggested_action": null
}`

func validConfig() *Config {
	return &Config{
		ClientID:     "test-client-id",
		Secret:       "test-secret",
		Environment:  "sandbox",
		AccessToken:  "test-token",
		Products:     []string{"transactions"},
		CountryCodes: []string{"US"},
	}
}

// newTestClient points a client at a fake Plaid API.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := validConfig()
	cfg.BaseURL = server.URL

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(c *Config)
		wantIs  error
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(_ *Config) {},
		},
		{
			name:    "missing client ID",
			mutate:  func(c *Config) { c.ClientID = "" },
			wantErr: true,
			wantIs:  common.ErrMissingConfig,
			errMsg:  "plaid client ID is required",
		},
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.Secret = "" },
			wantErr: true,
			wantIs:  common.ErrMissingConfig,
			errMsg:  "plaid secret is required",
		},
		{
			name:    "missing access token",
			mutate:  func(c *Config) { c.AccessToken = "" },
			wantErr: true,
			wantIs:  common.ErrMissingConfig,
			errMsg:  "plaid access token is required",
		},
		{
			name:    "missing environment",
			mutate:  func(c *Config) { c.Environment = "" },
			wantErr: true,
			wantIs:  common.ErrMissingConfig,
			errMsg:  "plaid environment is required",
		},
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.Environment = "invalid" },
			wantErr: true,
			wantIs:  common.ErrInvalidConfig,
			errMsg:  "invalid Plaid environment",
		},
		{
			name:   "valid development environment",
			mutate: func(c *Config) { c.Environment = "development" },
		},
		{
			name:   "valid production environment",
			mutate: func(c *Config) { c.Environment = "production" },
		},
		{
			name:    "unknown product",
			mutate:  func(c *Config) { c.Products = []string{"transactions", "teleportation"} },
			wantErr: true,
			wantIs:  common.ErrInvalidConfig,
			errMsg:  "unknown Plaid product",
		},
		{
			name:   "lowercase country code",
			mutate: func(c *Config) { c.CountryCodes = []string{"us", "CA"} },
		},
		{
			name:    "unknown country code",
			mutate:  func(c *Config) { c.CountryCodes = []string{"ZZ"} },
			wantErr: true,
			wantIs:  common.ErrInvalidConfig,
			errMsg:  "unknown country code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantIs)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(validConfig())
	require.NoError(t, err)
	assert.NotNil(t, client.client)
	assert.Equal(t, "test-token", client.accessToken)
	assert.NotNil(t, client.logger)

	client, err = NewClient(&Config{ClientID: "test-client-id"})
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_ListAccounts(t *testing.T) {
	var gotPath, gotClientID string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotClientID = r.Header.Get("PLAID-CLIENT-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		respond(http.StatusOK, accountsFixture)(w, r)
	})

	accounts, err := client.ListAccounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/accounts/get", gotPath)
	assert.Equal(t, "test-client-id", gotClientID)
	assert.Equal(t, "test-token", gotBody["access_token"])

	require.Len(t, accounts, 2)
	assert.Equal(t, "acc-checking", accounts[0].ID)
	assert.Equal(t, "Plaid Checking", accounts[0].Name)
	assert.Equal(t, "USD", accounts[0].Currency)
	assert.True(t, decimal.RequireFromString("1203.42").Equal(accounts[0].Available))
	assert.True(t, decimal.RequireFromString("1250.10").Equal(accounts[0].Current))
	assert.Equal(t, "acc-savings", accounts[1].ID)
}

func TestClient_GetBalances(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		respond(http.StatusOK, accountsFixture)(w, r)
	})

	balances, err := client.GetBalances(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/accounts/balance/get", gotPath)
	require.Len(t, balances, 2)
	assert.Equal(t, "acc-savings", balances[1].AccountID)
	assert.True(t, decimal.NewFromInt(200).Equal(balances[1].Available))
}

func TestClient_APIErrorIsReturnedAsData(t *testing.T) {
	client := newTestClient(t, respond(http.StatusBadRequest, invalidTokenFixture))

	calls := []struct {
		call func() error
		name string
	}{
		{name: "accounts", call: func() error {
			_, err := client.ListAccounts(context.Background())
			return err
		}},
		{name: "balances", call: func() error {
			_, err := client.GetBalances(context.Background())
			return err
		}},
		{name: "transactions", call: func() error {
			start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			_, err := client.GetTransactions(context.Background(), start, start.AddDate(0, 1, 0))
			return err
		}},
	}

	for _, tc := range calls {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, &APIError{
				StatusCode:     400,
				DisplayMessage: "provided access token is in an invalid format",
				ErrorCode:      "INVALID_ACCESS_TOKEN",
				ErrorType:      "INVALID_INPUT",
			}, apiErr)

			resp := ErrorResponse(err)
			require.Contains(t, resp, "error")
			assert.Equal(t, map[string]any{
				"status_code":     400,
				"display_message": "provided access token is in an invalid format",
				"error_code":      "INVALID_ACCESS_TOKEN",
				"error_type":      "INVALID_INPUT",
			}, resp["error"])
		})
	}
}

func TestClient_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	cfg := validConfig()
	cfg.BaseURL = server.URL
	server.Close()

	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = client.ListAccounts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPlaidConnection)
	assert.Nil(t, ErrorResponse(err))
}

func TestClient_GetTransactions_Validation(t *testing.T) {
	client := &Client{
		accessToken: "test-token",
		logger:      slog.Default().With("component", "plaid-test"),
	}

	tests := []struct {
		startDate time.Time
		endDate   time.Time
		ctx       context.Context
		name      string
		errMsg    string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			startDate: time.Now().AddDate(0, -1, 0),
			endDate:   time.Now(),
			errMsg:    "context cannot be nil",
		},
		{
			name:      "start date after end date",
			ctx:       context.Background(),
			startDate: time.Now(),
			endDate:   time.Now().AddDate(0, -1, 0),
			errMsg:    "start date must be before end date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetTransactions(tt.ctx, tt.startDate, tt.endDate) //nolint:staticcheck // nil context is the case under test
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMapTransaction(t *testing.T) {
	pt := plaid.Transaction{}
	pt.SetTransactionId("tx-1")
	pt.SetAccountId("acc-checking")
	pt.SetDate("2024-01-05")
	pt.SetName("ACME GYM MONTHLY")
	pt.SetMerchantName("Acme Gym")
	pt.SetAmount(40)
	pt.SetCategoryId("17018000")
	pt.SetCategory([]string{"Recreation", "Gyms and Fitness Centers"})
	pt.SetPending(false)

	tx, err := mapTransaction(pt)
	require.NoError(t, err)

	assert.Equal(t, model.Transaction{
		Date:         time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		ID:           "tx-1",
		AccountID:    "acc-checking",
		Name:         "ACME GYM MONTHLY",
		MerchantName: "Acme Gym",
		Amount:       decimal.NewFromFloat(40),
		CategoryID:   "17018000",
		Category:     []string{"Recreation", "Gyms and Fitness Centers"},
	}, tx)

	pt.SetDate("01/05/2024")
	_, err = mapTransaction(pt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnexpectedShape))
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient()

	startDate := time.Now().AddDate(0, -1, 0)
	endDate := time.Now()

	expectedTxs := []model.Transaction{
		{
			ID:     "tx1",
			Name:   "Test Transaction",
			Amount: decimal.RequireFromString("10.50"),
		},
	}
	mock.GetTransactionsFn = func(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
		return expectedTxs, nil
	}

	txs, err := mock.GetTransactions(context.Background(), startDate, endDate)
	require.NoError(t, err)
	assert.Equal(t, expectedTxs, txs)

	assert.Len(t, mock.GetTransactionsCalls, 1)
	assert.Equal(t, startDate, mock.GetTransactionsCalls[0].StartDate)
	assert.Equal(t, endDate, mock.GetTransactionsCalls[0].EndDate)

	expectedAccounts := []model.Account{{ID: "acc1"}, {ID: "acc2"}}
	mock.ListAccountsFn = func(_ context.Context) ([]model.Account, error) {
		return expectedAccounts, nil
	}

	accounts, err := mock.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expectedAccounts, accounts)
	assert.Equal(t, 1, mock.ListAccountsCalls)

	_, err = mock.GetBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, mock.GetBalancesCalls)

	mock.Reset()
	assert.Len(t, mock.GetTransactionsCalls, 0)
	assert.Equal(t, 0, mock.ListAccountsCalls)
	assert.Equal(t, 0, mock.GetBalancesCalls)
}
