package engine

import (
	"github.com/agusantonetti/smartmoney/internal/domain"
)

// runwayInfinite is the sentinel runway reported when there is positive
// liquidity but no measurable burn rate.
const runwayInfinite = 99

// ComputeMetrics derives the dashboard metrics snapshot from the transaction
// list and profile. It is pure: identical inputs always yield identical
// output, and it never fails.
//
// Balance is the profile's manually maintained net-worth figure and is
// deliberately decoupled from transaction cash flow. FixedExpenses sums
// subscription amounts without currency conversion, matching the dashboard's
// historical behavior. TotalDebt is summed without clamping each debt's
// remainder at zero, so an overfunded debt offsets the others.
func ComputeMetrics(transactions []domain.Transaction, profile domain.FinancialProfile) domain.FinancialMetrics {
	p := profile.Normalize()

	var income, expense float64
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TypeIncome:
			income += safeNum(tx.Amount)
		case domain.TypeExpense:
			expense += safeNum(tx.Amount)
		}
	}

	balance := safeNum(p.InitialBalance)

	var salaryPaid float64
	for _, src := range p.IncomeSources {
		salaryPaid += safeNum(src.Amount)
	}

	var totalReserved float64
	for _, bucket := range p.SavingsBuckets {
		totalReserved += safeNum(bucket.CurrentAmount)
	}

	var fixedExpenses float64
	for _, sub := range p.Subscriptions {
		fixedExpenses += safeNum(sub.Amount)
	}

	var totalDebt float64
	for _, d := range p.Debts {
		totalDebt += safeNum(d.Remaining())
	}

	months := uniqueMonths(transactions)
	avgMonthlyExpense := expense/float64(months) + fixedExpenses
	liquidAssets := balance - totalReserved

	var runway float64
	if avgMonthlyExpense > 0 {
		runway = liquidAssets / avgMonthlyExpense
	} else if liquidAssets > 0 {
		runway = runwayInfinite
	}

	score := 0.0
	if liquidAssets > 0 {
		score += 20
	}
	switch {
	case runway >= 6:
		score += 40
	case runway >= 3:
		score += 20
	case runway >= 1:
		score += 10
	}

	totalMonthlyIncome := salaryPaid + income/float64(months)
	var savingsRate float64
	if totalMonthlyIncome > 0 {
		savingsRate = (totalMonthlyIncome - avgMonthlyExpense) / totalMonthlyIncome
	}
	switch {
	case savingsRate >= 0.20:
		score += 40
	case savingsRate >= 0.10:
		score += 20
	}

	if totalDebt > liquidAssets {
		score -= 10
	}

	return domain.FinancialMetrics{
		Income:            safeNum(income),
		Expense:           safeNum(expense),
		Balance:           balance,
		SalaryPaid:        safeNum(salaryPaid),
		TotalReserved:     safeNum(totalReserved),
		FixedExpenses:     safeNum(fixedExpenses),
		TotalDebt:         safeNum(totalDebt),
		AvgMonthlyExpense: safeNum(avgMonthlyExpense),
		LiquidAssets:      safeNum(liquidAssets),
		Runway:            round1(safeNum(runway)),
		HealthScore:       clampScore(safeNum(score)),
	}
}

// uniqueMonths counts distinct "YYYY-MM" prefixes among transaction dates.
// Returns at least 1 so it can be used as a divisor.
func uniqueMonths(transactions []domain.Transaction) int {
	seen := map[string]struct{}{}
	for _, tx := range transactions {
		key := ""
		if len(tx.Date) >= 7 {
			key = tx.Date[:7]
		}
		seen[key] = struct{}{}
	}
	if len(seen) == 0 {
		return 1
	}
	return len(seen)
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
