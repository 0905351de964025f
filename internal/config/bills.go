package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Veraticus/wealth-builder/internal/common"
	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// billEntry is the config file form of a bill.
type billEntry struct {
	Name         string `mapstructure:"name"`
	MerchantName string `mapstructure:"merchant_name"`
	Regex        string `mapstructure:"regex"`
	DueDate      string `mapstructure:"due_date"`
	Period       string `mapstructure:"period"`
	Amount       string `mapstructure:"amount"`
	Frequency    int    `mapstructure:"frequency"`
}

// LoadBills decodes the bills declared under the "bills" key, in file order.
func LoadBills(v *viper.Viper) ([]model.Bill, error) {
	var entries []billEntry
	if err := v.UnmarshalKey("bills", &entries); err != nil {
		return nil, fmt.Errorf("%w: bills: %w", common.ErrInvalidConfig, err)
	}

	bills := make([]model.Bill, 0, len(entries))
	for i, e := range entries {
		bill, err := e.toBill()
		if err != nil {
			return nil, fmt.Errorf("%w: bills[%d]: %w", common.ErrInvalidConfig, i, err)
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

func (e billEntry) toBill() (model.Bill, error) {
	bill := model.Bill{
		Name:         e.Name,
		MerchantName: e.MerchantName,
		Regex:        e.Regex,
		DueDate:      e.DueDate,
		Period:       e.Period,
		Frequency:    e.Frequency,
	}.WithDefaults()

	if e.Amount != "" {
		amount, err := decimal.NewFromString(e.Amount)
		if err != nil {
			return model.Bill{}, fmt.Errorf("invalid amount %q: %w", e.Amount, err)
		}
		bill.Amount = amount
	}

	if err := bill.Validate(); err != nil {
		return model.Bill{}, err
	}
	return bill, nil
}

// AddBill appends bill to the "bills" key of the config file at path,
// creating the file when it does not exist. Only the file's own contents are
// rewritten, never values that came from flags or the environment.
func AddBill(path string, bill model.Bill) error {
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidBill, err)
	}

	file := viper.New()
	file.SetConfigFile(path)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config: %w", err)
	}

	existing, _ := file.Get("bills").([]any)
	entry := map[string]any{
		"name":          bill.Name,
		"merchant_name": bill.MerchantName,
		"regex":         bill.Regex,
		"due_date":      bill.DueDate,
		"frequency":     bill.Frequency,
		"period":        bill.Period,
		"amount":        bill.Amount.String(),
	}
	file.Set("bills", append(existing, entry))

	if err := file.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
