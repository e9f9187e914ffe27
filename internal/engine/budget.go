package engine

import (
	"sort"
	"strings"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

// BudgetStatus is the severity band of a category's spend against its limit.
type BudgetStatus string

const (
	// BudgetNoLimit marks categories without a configured limit; they render
	// as "no limit" rather than 0%.
	BudgetNoLimit BudgetStatus = "no_limit"
	BudgetOK      BudgetStatus = "ok"
	BudgetWarning BudgetStatus = "warning"
	BudgetOver    BudgetStatus = "over"
)

// Severity thresholds on spent/limit.
const (
	budgetWarningRatio = 0.8
	budgetOverRatio    = 1.0
)

// CategoryBudget is one category's month spend against its configured limit.
type CategoryBudget struct {
	Category  string       `json:"category"`
	Spent     float64      `json:"spent"`
	Limit     float64      `json:"limit"`
	Percent   float64      `json:"percent"`
	Remaining float64      `json:"remaining"`
	Status    BudgetStatus `json:"status"`
}

// defaultCategories always appear in the budget report even with no spend.
var defaultCategories = []string{"Comida", "Transporte", "Hogar", "Otros"}

// MonthlySpendByCategory sums expense transactions per category within the
// given "YYYY-MM" month window.
func MonthlySpendByCategory(transactions []domain.Transaction, monthKey string) map[string]float64 {
	totals := map[string]float64{}
	for _, tx := range transactions {
		if tx.Type != domain.TypeExpense || !strings.HasPrefix(tx.Date, monthKey) {
			continue
		}
		totals[tx.Category] += safeNum(tx.Amount)
	}
	return totals
}

// BudgetReport computes, for the given month, every category's spend against
// the profile's configured limits. Categories come from the month's expenses,
// the configured limits and the default set, sorted by name.
func BudgetReport(transactions []domain.Transaction, profile domain.FinancialProfile, monthKey string) []CategoryBudget {
	p := profile.Normalize()
	spent := MonthlySpendByCategory(transactions, monthKey)

	names := map[string]struct{}{}
	for c := range spent {
		names[c] = struct{}{}
	}
	for c := range p.BudgetLimits {
		names[c] = struct{}{}
	}
	for _, c := range defaultCategories {
		names[c] = struct{}{}
	}

	report := make([]CategoryBudget, 0, len(names))
	for c := range names {
		report = append(report, categoryBudget(c, spent[c], p.BudgetLimits[c]))
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Category < report[j].Category })
	return report
}

func categoryBudget(category string, spent, limit float64) CategoryBudget {
	cb := CategoryBudget{
		Category: category,
		Spent:    safeNum(spent),
		Limit:    safeNum(limit),
		Status:   BudgetNoLimit,
	}
	if cb.Limit <= 0 {
		return cb
	}

	ratio := cb.Spent / cb.Limit
	cb.Percent = ratio * 100
	if cb.Percent > 100 {
		cb.Percent = 100
	}
	cb.Remaining = cb.Limit - cb.Spent
	if cb.Remaining < 0 {
		cb.Remaining = 0
	}

	switch {
	case ratio >= budgetOverRatio:
		cb.Status = BudgetOver
	case ratio >= budgetWarningRatio:
		cb.Status = BudgetWarning
	default:
		cb.Status = BudgetOK
	}
	return cb
}
