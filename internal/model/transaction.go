package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single financial transaction from any source.
// Amounts follow the Plaid convention: positive is money out, negative is money in.
type Transaction struct {
	Date         time.Time
	Amount       decimal.Decimal
	ID           string
	AccountID    string
	Name         string // Raw transaction description
	MerchantName string // Merchant as reported by the source, may be empty
	CategoryID   string

	// Optional metadata that may be available depending on source
	Category []string
	Pending  bool
}

// NormalizedMerchant returns the merchant name in its comparison form.
func (t Transaction) NormalizedMerchant() string {
	return NormalizeMerchant(t.MerchantName)
}
