package engine

import (
	"math"
	"testing"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

func expenseTx(id, date string, amount float64) domain.Transaction {
	return domain.Transaction{ID: id, Amount: amount, Category: "Comida", Type: domain.TypeExpense, Date: date}
}

func incomeTx(id, date string, amount float64) domain.Transaction {
	return domain.Transaction{ID: id, Amount: amount, Category: "Sueldo", Type: domain.TypeIncome, Date: date}
}

func TestComputeMetrics_BasicScenario(t *testing.T) {
	// Single expense, manually maintained balance of 5000.
	txs := []domain.Transaction{expenseTx("t1", "2024-01-05", 1000)}
	profile := domain.FinancialProfile{InitialBalance: 5000}

	m := ComputeMetrics(txs, profile)

	if m.Balance != 5000 {
		t.Errorf("Balance = %v, want 5000", m.Balance)
	}
	if m.Expense != 1000 {
		t.Errorf("Expense = %v, want 1000", m.Expense)
	}
	if m.AvgMonthlyExpense != 1000 {
		t.Errorf("AvgMonthlyExpense = %v, want 1000", m.AvgMonthlyExpense)
	}
	if m.Runway != 5.0 {
		t.Errorf("Runway = %v, want 5.0", m.Runway)
	}
}

func TestComputeMetrics_BalanceDecoupledFromCashFlow(t *testing.T) {
	profile := domain.FinancialProfile{InitialBalance: 7777}

	cases := [][]domain.Transaction{
		nil,
		{incomeTx("t1", "2024-02-01", 500000)},
		{expenseTx("t2", "2024-02-02", 900000)},
		{incomeTx("t3", "2024-03-01", 100), expenseTx("t4", "2024-04-01", 100)},
	}
	for _, txs := range cases {
		if m := ComputeMetrics(txs, profile); m.Balance != 7777 {
			t.Errorf("Balance = %v with %d transactions, want 7777", m.Balance, len(txs))
		}
	}
}

func TestComputeMetrics_HealthScoreBounds(t *testing.T) {
	profiles := []domain.FinancialProfile{
		{},
		{InitialBalance: 1e12, IncomeSources: []domain.IncomeSource{{ID: "s", Name: "x", Amount: 1e9}}},
		{InitialBalance: -1e9, Debts: []domain.Debt{{ID: "d", Name: "x", TotalAmount: 1e9}}},
	}
	txSets := [][]domain.Transaction{
		nil,
		{expenseTx("a", "2024-01-01", 1e9)},
		{incomeTx("b", "2024-01-01", 1e9), expenseTx("c", "2024-02-01", 5)},
	}

	for _, p := range profiles {
		for _, txs := range txSets {
			m := ComputeMetrics(txs, p)
			if m.HealthScore < 0 || m.HealthScore > 100 {
				t.Errorf("HealthScore = %v out of [0,100]", m.HealthScore)
			}
		}
	}
}

func TestComputeMetrics_SafeNumberPolicy(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "t1", Amount: math.NaN(), Category: "x", Type: domain.TypeExpense, Date: "2024-01-01"},
		{ID: "t2", Amount: math.Inf(1), Category: "x", Type: domain.TypeIncome, Date: "2024-01-02"},
		expenseTx("t3", "2024-01-03", 100),
	}
	profile := domain.FinancialProfile{
		InitialBalance: 1000,
		SavingsBuckets: []domain.SavingsBucket{{ID: "b", Name: "x", CurrentAmount: math.Inf(-1)}},
	}

	m := ComputeMetrics(txs, profile)

	if m.Expense != 100 {
		t.Errorf("Expense = %v, want 100 (NaN coerced to 0)", m.Expense)
	}
	if m.Income != 0 {
		t.Errorf("Income = %v, want 0 (Inf coerced to 0)", m.Income)
	}
	if m.TotalReserved != 0 {
		t.Errorf("TotalReserved = %v, want 0 (-Inf coerced to 0)", m.TotalReserved)
	}
}

func TestComputeMetrics_RunwaySentinels(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		want    float64
	}{
		{
			// No burn rate, zero liquidity: runway 0, no liquidity points.
			name:    "zero liquidity zero burn",
			balance: 0,
			want:    0,
		},
		{
			// No burn rate but positive liquidity: infinite-runway sentinel.
			name:    "positive liquidity zero burn",
			balance: 500,
			want:    99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMetrics(nil, domain.FinancialProfile{InitialBalance: tt.balance})
			if m.Runway != tt.want {
				t.Errorf("Runway = %v, want %v", m.Runway, tt.want)
			}
		})
	}
}

func TestComputeMetrics_ZeroLiquidityScoresNoLiquidityPoints(t *testing.T) {
	m := ComputeMetrics(nil, domain.FinancialProfile{InitialBalance: 0})
	if m.Runway != 0 {
		t.Errorf("Runway = %v, want 0", m.Runway)
	}
	if m.HealthScore != 0 {
		t.Errorf("HealthScore = %v, want 0", m.HealthScore)
	}
}

func TestComputeMetrics_TotalDebtUnclamped(t *testing.T) {
	// An overfunded debt keeps its negative remainder and offsets the others.
	profile := domain.FinancialProfile{
		Debts: []domain.Debt{
			{ID: "d1", Name: "overpaid", TotalAmount: 100, CurrentAmount: 150},
			{ID: "d2", Name: "open", TotalAmount: 500},
		},
	}

	m := ComputeMetrics(nil, profile)
	if m.TotalDebt != 450 {
		t.Errorf("TotalDebt = %v, want 450", m.TotalDebt)
	}
}

func TestComputeMetrics_UniqueMonths(t *testing.T) {
	// Three transactions across two months: expense averaged over 2 months.
	txs := []domain.Transaction{
		expenseTx("t1", "2024-01-05", 600),
		expenseTx("t2", "2024-01-20", 400),
		expenseTx("t3", "2024-02-10", 1000),
	}
	m := ComputeMetrics(txs, domain.FinancialProfile{})
	if m.AvgMonthlyExpense != 1000 {
		t.Errorf("AvgMonthlyExpense = %v, want 1000", m.AvgMonthlyExpense)
	}
}

func TestComputeMetrics_FixedExpensesIncludedInBurn(t *testing.T) {
	txs := []domain.Transaction{expenseTx("t1", "2024-01-05", 1000)}
	profile := domain.FinancialProfile{
		Subscriptions: []domain.Subscription{
			{ID: "s1", Name: "Netflix", Amount: 300, BillingDay: 5},
		},
	}

	m := ComputeMetrics(txs, profile)
	if m.FixedExpenses != 300 {
		t.Errorf("FixedExpenses = %v, want 300", m.FixedExpenses)
	}
	if m.AvgMonthlyExpense != 1300 {
		t.Errorf("AvgMonthlyExpense = %v, want 1300", m.AvgMonthlyExpense)
	}
}

func TestComputeMetrics_Idempotent(t *testing.T) {
	txs := []domain.Transaction{
		expenseTx("t1", "2024-01-05", 1000),
		incomeTx("t2", "2024-02-01", 2500),
	}
	profile := domain.FinancialProfile{
		InitialBalance: 9000,
		SavingsBuckets: []domain.SavingsBucket{{ID: "b", Name: "Viaje", CurrentAmount: 2000}},
		Debts:          []domain.Debt{{ID: "d", Name: "Tarjeta", TotalAmount: 800, CurrentAmount: 100}},
	}

	first := ComputeMetrics(txs, profile)
	second := ComputeMetrics(txs, profile)
	if first != second {
		t.Errorf("ComputeMetrics not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestComputeMetrics_HealthScoreComposition(t *testing.T) {
	// Liquid 10000, burn 1000/month: +20 liquidity, +40 runway >= 6.
	// No income at all, so the savings-rate tier contributes nothing.
	txs := []domain.Transaction{expenseTx("t1", "2024-01-05", 1000)}
	m := ComputeMetrics(txs, domain.FinancialProfile{InitialBalance: 10000})

	if m.HealthScore != 60 {
		t.Errorf("HealthScore = %v, want 60", m.HealthScore)
	}
	if m.Runway != 10.0 {
		t.Errorf("Runway = %v, want 10.0", m.Runway)
	}
}

func TestComputeMetrics_DebtPenalty(t *testing.T) {
	// Same as above but debts exceed liquid assets: -10.
	txs := []domain.Transaction{expenseTx("t1", "2024-01-05", 1000)}
	profile := domain.FinancialProfile{
		InitialBalance: 10000,
		Debts:          []domain.Debt{{ID: "d", Name: "Prestamo", TotalAmount: 50000}},
	}

	m := ComputeMetrics(txs, profile)
	if m.HealthScore != 50 {
		t.Errorf("HealthScore = %v, want 50", m.HealthScore)
	}
}

func TestComputeMetrics_SavingsRateTiers(t *testing.T) {
	// salaryPaid 1000, no transactions: tmi = 1000, burn = fixedExpenses.
	base := domain.FinancialProfile{
		InitialBalance: 10000,
		IncomeSources:  []domain.IncomeSource{{ID: "s", Name: "Trabajo", Amount: 1000}},
	}

	tests := []struct {
		name      string
		fixed     float64
		wantScore float64
	}{
		// savingsRate 0.5: +20 liquidity, +40 runway, +40 savings.
		{name: "high savings rate", fixed: 500, wantScore: 100},
		// savingsRate 0.15: +20, +40, +20.
		{name: "mid savings rate", fixed: 850, wantScore: 80},
		// savingsRate 0.05: +20, +40, +0.
		{name: "low savings rate", fixed: 950, wantScore: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.Subscriptions = []domain.Subscription{{ID: "f", Name: "Fijo", Amount: tt.fixed, BillingDay: 1}}
			m := ComputeMetrics(nil, p)
			if m.HealthScore != tt.wantScore {
				t.Errorf("HealthScore = %v, want %v", m.HealthScore, tt.wantScore)
			}
		})
	}
}
