package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Occurrence groups the transactions of one bill that share a date, name and amount.
type Occurrence struct {
	Date   time.Time
	Amount decimal.Decimal
	Name   string
	Count  int
}

// BillActivity is the occurrence report for a single bill.
type BillActivity struct {
	LastSeen    time.Time
	Occurrences []Occurrence
	Bill        Bill
	Matched     int
}

// Found reports whether any transaction matched the bill.
func (a BillActivity) Found() bool {
	return a.Matched > 0
}
