// Package analysis detects user-declared recurring bills in transaction history.
package analysis

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/wealth-builder/internal/common"
	"github.com/Veraticus/wealth-builder/internal/model"
)

// Analyzer holds the registered bills and matches them against transactions.
// Bills are kept in registration order and duplicates are allowed.
type Analyzer struct {
	logger *slog.Logger
	bills  []model.Bill
}

// NewAnalyzer creates an analyzer with an empty bill registry.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		logger: slog.Default().With("component", "analysis"),
	}
}

// AddBill registers a bill. Registering the same bill twice is accepted.
func (a *Analyzer) AddBill(bill model.Bill) error {
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidBill, err)
	}
	a.bills = append(a.bills, bill)
	return nil
}

// Bills returns the registered bills in registration order.
func (a *Analyzer) Bills() []model.Bill {
	out := make([]model.Bill, len(a.bills))
	copy(out, a.bills)
	return out
}

// ListBills returns the bill report, one field mapping per registered bill.
func (a *Analyzer) ListBills() []map[string]any {
	report := make([]map[string]any, 0, len(a.bills))
	for _, bill := range a.bills {
		report = append(report, bill.ToMap())
	}
	return report
}

type occurrenceKey struct {
	date   string
	name   string
	amount string
}

// AnalyzeBillActivity groups the transactions matching bill by date, name and
// amount and counts the rows in each group. Groups are ordered by date, then
// name, then amount. No match yields an empty result.
func (a *Analyzer) AnalyzeBillActivity(bill model.Bill, transactions []model.Transaction) model.BillActivity {
	activity := model.BillActivity{
		Bill:        bill,
		Occurrences: []model.Occurrence{},
	}

	match := matcherFor(bill)
	groups := make(map[occurrenceKey]int)

	for _, tx := range transactions {
		if !match(tx) {
			continue
		}

		activity.Matched++
		if tx.Date.After(activity.LastSeen) {
			activity.LastSeen = tx.Date
		}

		key := occurrenceKey{
			date:   tx.Date.Format("2006-01-02"),
			name:   tx.Name,
			amount: tx.Amount.String(),
		}
		if _, seen := groups[key]; !seen {
			activity.Occurrences = append(activity.Occurrences, model.Occurrence{
				Date:   dayOf(tx.Date),
				Name:   tx.Name,
				Amount: tx.Amount,
			})
		}
		groups[key]++
	}

	for i := range activity.Occurrences {
		occ := &activity.Occurrences[i]
		occ.Count = groups[occurrenceKey{
			date:   occ.Date.Format("2006-01-02"),
			name:   occ.Name,
			amount: occ.Amount.String(),
		}]
	}

	sort.SliceStable(activity.Occurrences, func(i, j int) bool {
		oi, oj := activity.Occurrences[i], activity.Occurrences[j]
		if !oi.Date.Equal(oj.Date) {
			return oi.Date.Before(oj.Date)
		}
		if oi.Name != oj.Name {
			return oi.Name < oj.Name
		}
		return oi.Amount.LessThan(oj.Amount)
	})

	a.logger.Debug("Analyzed bill activity",
		"bill", bill.Name,
		"matched", activity.Matched,
		"groups", len(activity.Occurrences))

	return activity
}

// FindBillsInPeriod analyzes every registered bill against the same
// transactions and returns one result per bill in registration order.
func (a *Analyzer) FindBillsInPeriod(transactions []model.Transaction) []model.BillActivity {
	results := make([]model.BillActivity, 0, len(a.bills))
	for _, bill := range a.bills {
		results = append(results, a.AnalyzeBillActivity(bill, transactions))
	}
	return results
}

// matcherFor builds the transaction predicate for a bill. The merchant name is
// the primary rule; a bill declared only with a regex matches on the
// transaction name instead.
func matcherFor(bill model.Bill) func(model.Transaction) bool {
	if merchant := model.NormalizeMerchant(bill.MerchantName); merchant != "" {
		return func(tx model.Transaction) bool {
			return tx.NormalizedMerchant() == merchant
		}
	}

	pattern := bill.Regex
	if pattern != "" && !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if bill.Regex == "" || err != nil {
		return func(model.Transaction) bool { return false }
	}

	return func(tx model.Transaction) bool {
		return re.MatchString(tx.Name)
	}
}

func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
