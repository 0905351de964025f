package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Default values applied to bills that omit them.
const (
	DefaultBillFrequency = 1
	DefaultBillPeriod    = "monthly"
)

// Bill keys used by ToMap. Downstream reports depend on these exact names.
const (
	BillKeyName         = "NAME"
	BillKeyRegex        = "REGEX"
	BillKeyFrequency    = "FREQUENCY"
	BillKeyMerchantName = "MERCHANT_NAME"
	BillKeyPeriod       = "PERIOD"
	BillKeyAmount       = "AMOUNT"
	BillKeyDueDate      = "DUE_DATE"
)

// BillKeys lists the bill report columns in display order.
var BillKeys = []string{
	BillKeyName,
	BillKeyRegex,
	BillKeyFrequency,
	BillKeyMerchantName,
	BillKeyPeriod,
	BillKeyAmount,
	BillKeyDueDate,
}

// Bill is a user-declared recurring payment pattern.
type Bill struct {
	Amount       decimal.Decimal
	Name         string
	MerchantName string
	Regex        string
	DueDate      string
	Period       string
	Frequency    int
}

// NewBill creates a bill for a merchant with the default frequency and period.
func NewBill(name, merchantName, dueDate string) Bill {
	return Bill{
		Name:         name,
		MerchantName: merchantName,
		DueDate:      dueDate,
		Frequency:    DefaultBillFrequency,
		Period:       DefaultBillPeriod,
	}
}

// WithDefaults fills in the frequency and period when they were left unset.
func (b Bill) WithDefaults() Bill {
	if b.Frequency == 0 {
		b.Frequency = DefaultBillFrequency
	}
	if b.Period == "" {
		b.Period = DefaultBillPeriod
	}
	return b
}

// Validate ensures the bill can be matched against transactions.
func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("bill name is required")
	}
	if NormalizeMerchant(b.MerchantName) == "" && b.Regex == "" {
		return fmt.Errorf("bill %q needs a merchant name or a regex", b.Name)
	}
	if b.Regex != "" {
		if _, err := regexp.Compile(b.Regex); err != nil {
			return fmt.Errorf("bill %q has an invalid regex: %w", b.Name, err)
		}
	}
	if b.Frequency < 0 {
		return fmt.Errorf("bill %q frequency cannot be negative", b.Name)
	}
	return nil
}

// ToMap serializes the bill using the fixed report key set. Absent optional
// fields are emitted as their zero values rather than omitted.
func (b Bill) ToMap() map[string]any {
	return map[string]any{
		BillKeyName:         b.Name,
		BillKeyRegex:        b.Regex,
		BillKeyFrequency:    b.Frequency,
		BillKeyMerchantName: b.MerchantName,
		BillKeyPeriod:       b.Period,
		BillKeyAmount:       b.Amount.InexactFloat64(),
		BillKeyDueDate:      b.DueDate,
	}
}

// NormalizeMerchant returns the comparison form of a merchant name:
// surrounding and repeated inner whitespace removed, lowercased.
func NormalizeMerchant(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
