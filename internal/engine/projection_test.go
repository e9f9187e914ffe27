package engine

import (
	"testing"
	"time"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

var projToday = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestProject_NoExpenseHistoryIsFlat(t *testing.T) {
	p := Project(nil, domain.FinancialProfile{}, 1000, projToday)

	if p.AverageDailySpend != 0 {
		t.Errorf("AverageDailySpend = %v, want 0", p.AverageDailySpend)
	}
	if len(p.Points) != ProjectionDays {
		t.Fatalf("len(Points) = %d, want %d", len(p.Points), ProjectionDays)
	}
	for _, pt := range p.Points {
		if pt.Balance != 1000 {
			t.Fatalf("flat projection drifted: %+v", pt)
		}
	}
	if p.DaysUntilZero != NoZeroCrossing {
		t.Errorf("DaysUntilZero = %d, want %d", p.DaysUntilZero, NoZeroCrossing)
	}
}

func TestProject_AverageDailySpend(t *testing.T) {
	// One 3000 expense 10 days ago: 3000 over 10 days = 300/day.
	txs := []domain.Transaction{expenseTx("t1", "2025-02-28", 3000)}

	p := Project(txs, domain.FinancialProfile{}, 10000, projToday)

	if p.AverageDailySpend != 300 {
		t.Errorf("AverageDailySpend = %v, want 300", p.AverageDailySpend)
	}
	if got := p.Points[0].Balance; got != 9700 {
		t.Errorf("day 0 balance = %v, want 9700", got)
	}
}

func TestProject_OldExpensesCapDivisorAtWindow(t *testing.T) {
	// Earliest expense far in the past: divisor capped at 30, and the old
	// amount itself falls outside the 30-day window.
	txs := []domain.Transaction{
		expenseTx("t1", "2024-06-01", 99999),
		expenseTx("t2", "2025-03-01", 600),
	}

	p := Project(txs, domain.FinancialProfile{}, 10000, projToday)

	if p.AverageDailySpend != 20 {
		t.Errorf("AverageDailySpend = %v, want 600/30 = 20", p.AverageDailySpend)
	}
}

func TestProject_SubscriptionChargedOnBillingDay(t *testing.T) {
	profile := domain.FinancialProfile{
		Subscriptions: []domain.Subscription{
			{ID: "s1", Name: "Gym", Amount: 500, BillingDay: 15},
		},
	}

	p := Project(nil, profile, 10000, projToday)

	// Mar 10 + 5 days = Mar 15.
	if got := p.Points[5].Balance - p.Points[4].Balance; got != -500 {
		t.Errorf("billing-day delta = %v, want -500", got)
	}
	if got := p.Points[4].Balance - p.Points[3].Balance; got != 0 {
		t.Errorf("non-billing-day delta = %v, want 0", got)
	}
}

func TestProject_IncomeCreditedOnFirstOfMonth(t *testing.T) {
	profile := domain.FinancialProfile{
		IncomeSources: []domain.IncomeSource{
			{ID: "i1", Name: "Sueldo", Amount: 4000, IsActive: true},
			{ID: "i2", Name: "Extra", Amount: 1000, IsActive: true},
		},
	}

	p := Project(nil, profile, 100, projToday)

	// Mar 10 + 22 days = Apr 1.
	if got := p.Points[22].Balance - p.Points[21].Balance; got != 5000 {
		t.Errorf("first-of-month delta = %v, want 5000", got)
	}
}

func TestProject_DaysUntilZero(t *testing.T) {
	txs := []domain.Transaction{expenseTx("t1", "2025-02-28", 3000)} // 300/day

	p := Project(txs, domain.FinancialProfile{}, 1000, projToday)

	// 700, 400, 100, -200: first negative at index 3.
	if p.DaysUntilZero != 3 {
		t.Errorf("DaysUntilZero = %d, want 3", p.DaysUntilZero)
	}
	if !p.Points[3].IsNegative {
		t.Error("Points[3].IsNegative = false, want true")
	}
	if p.Points[2].IsNegative {
		t.Error("Points[2].IsNegative = true, want false")
	}
}

func TestProject_SameDayExpenseUsesMinimumDivisor(t *testing.T) {
	txs := []domain.Transaction{expenseTx("t1", projToday.Format("2006-01-02"), 450)}

	p := Project(txs, domain.FinancialProfile{}, 10000, projToday)

	if p.AverageDailySpend != 450 {
		t.Errorf("AverageDailySpend = %v, want 450 (divisor floored at 1)", p.AverageDailySpend)
	}
}
