// Package report shapes accounts, transactions and bill activity into tables
// and renders them for the terminal, CSV and JSON.
package report

import (
	"fmt"
	"time"

	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/shopspring/decimal"
)

// Table is a titled grid of values.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Strings returns the rows with every cell formatted for display.
func (t Table) Strings() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatCell(v)
		}
		out = append(out, cells)
	}
	return out
}

// FormatCell renders one cell value as text.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.StringFixed(2)
	case time.Time:
		return val.Format("2006-01-02")
	case float64:
		return decimal.NewFromFloat(val).StringFixed(2)
	default:
		return fmt.Sprint(val)
	}
}

// AccountsTable lists accounts with their available balance.
func AccountsTable(accounts []model.Account) Table {
	t := Table{
		Title:   "Accounts",
		Columns: []string{"Account_ID", "Account_Name", "Balance"},
		Rows:    make([][]any, 0, len(accounts)),
	}
	for _, a := range accounts {
		t.Rows = append(t.Rows, []any{a.ID, a.Name, a.Available})
	}
	return t
}

// BalancesTable lists the balance-only view of each account.
func BalancesTable(balances []model.Balance) Table {
	t := Table{
		Title:   "Balances",
		Columns: []string{"Account_ID", "Available", "Current", "Currency"},
		Rows:    make([][]any, 0, len(balances)),
	}
	for _, b := range balances {
		t.Rows = append(t.Rows, []any{b.AccountID, b.Available, b.Current, b.Currency})
	}
	return t
}

// TransactionsTable lists transactions in the order given.
func TransactionsTable(transactions []model.Transaction) Table {
	t := Table{
		Title:   "Transactions",
		Columns: []string{"date", "merchant_name", "name", "amount", "category_id", "account_id"},
		Rows:    make([][]any, 0, len(transactions)),
	}
	for _, tx := range transactions {
		t.Rows = append(t.Rows, []any{tx.Date, tx.MerchantName, tx.Name, tx.Amount, tx.CategoryID, tx.AccountID})
	}
	return t
}

// BillsTable renders the bill report using the fixed bill key set.
func BillsTable(bills []map[string]any) Table {
	t := Table{
		Title:   "Bills",
		Columns: append([]string(nil), model.BillKeys...),
		Rows:    make([][]any, 0, len(bills)),
	}
	for _, bill := range bills {
		row := make([]any, len(t.Columns))
		for i, key := range t.Columns {
			row[i] = bill[key]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// OccurrenceTable lists the occurrence groups of one bill.
func OccurrenceTable(activity model.BillActivity) Table {
	t := Table{
		Title:   "Bill: " + activity.Bill.Name,
		Columns: []string{"date", "name", "amount", "count"},
		Rows:    make([][]any, 0, len(activity.Occurrences)),
	}
	for _, occ := range activity.Occurrences {
		t.Rows = append(t.Rows, []any{occ.Date, occ.Name, occ.Amount, occ.Count})
	}
	return t
}

// ActivityTable flattens the activity of several bills into one table with a
// leading bill column.
func ActivityTable(activities []model.BillActivity) Table {
	t := Table{
		Title:   "Bill Activity",
		Columns: []string{"bill", "date", "name", "amount", "count"},
	}
	for _, activity := range activities {
		for _, occ := range activity.Occurrences {
			t.Rows = append(t.Rows, []any{activity.Bill.Name, occ.Date, occ.Name, occ.Amount, occ.Count})
		}
	}
	if t.Rows == nil {
		t.Rows = [][]any{}
	}
	return t
}
