// Package model defines the core data types shared across the application.
package model

import "github.com/shopspring/decimal"

// Account is a snapshot of a linked account as returned by the data provider.
type Account struct {
	ID        string
	Name      string
	Currency  string
	Available decimal.Decimal
	Current   decimal.Decimal
}

// Balance is the balance-only view of an account.
type Balance struct {
	AccountID string
	Currency  string
	Available decimal.Decimal
	Current   decimal.Decimal
}
