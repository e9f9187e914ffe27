package engine

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

// ProjectionDays is the horizon of the future simulator.
const ProjectionDays = 30

// NoZeroCrossing is the DaysUntilZero sentinel when the projected balance
// never goes negative within the horizon.
const NoZeroCrossing = -1

// ProjectionPoint is one projected day of balance.
type ProjectionPoint struct {
	Date       string  `json:"date"`
	Balance    float64 `json:"balance"`
	IsNegative bool    `json:"isNegative"`
}

// Projection is the output of the future simulator.
type Projection struct {
	Points            []ProjectionPoint `json:"points"`
	AverageDailySpend float64           `json:"averageDailySpend"`
	FinalBalance      float64           `json:"finalBalance"`
	DaysUntilZero     int               `json:"daysUntilZero"`
}

// Project forward-simulates the balance for the next ProjectionDays days
// starting today. currentBalance is caller-supplied, typically the free
// balance (total minus reserved). Each day subtracts the average daily spend,
// subtracts subscriptions whose billing day matches the day of month, and on
// the 1st credits the flat sum of income source amounts. Frequency and
// currency are intentionally ignored here; the simulator models burn rate,
// not contracts.
func Project(transactions []domain.Transaction, profile domain.FinancialProfile, currentBalance float64, today time.Time) Projection {
	p := profile.Normalize()
	start := civil.DateOf(today)

	avg := averageDailySpend(transactions, start)

	var incomeOnFirst float64
	for _, src := range p.IncomeSources {
		incomeOnFirst += safeNum(src.Amount)
	}

	points := make([]ProjectionPoint, 0, ProjectionDays)
	daysUntilZero := NoZeroCrossing
	running := safeNum(currentBalance)

	for i := 0; i < ProjectionDays; i++ {
		day := start.AddDays(i)

		running -= avg
		for _, sub := range p.Subscriptions {
			if sub.BillingDay == day.Day {
				running -= safeNum(sub.Amount)
			}
		}
		if day.Day == 1 && len(p.IncomeSources) > 0 {
			running += incomeOnFirst
		}

		negative := running < 0
		if negative && daysUntilZero == NoZeroCrossing {
			daysUntilZero = i
		}
		points = append(points, ProjectionPoint{
			Date:       day.String(),
			Balance:    running,
			IsNegative: negative,
		})
	}

	return Projection{
		Points:            points,
		AverageDailySpend: avg,
		FinalBalance:      points[len(points)-1].Balance,
		DaysUntilZero:     daysUntilZero,
	}
}

// averageDailySpend averages expense transactions of the last 30 days over
// min(daysSinceEarliestExpense, 30) days, never dividing by less than 1.
// With no expense history it is 0 and the projection is driven by income and
// subscriptions alone.
func averageDailySpend(transactions []domain.Transaction, today civil.Date) float64 {
	var earliest civil.Date
	found := false
	var totalRecent float64

	windowStart := today.AddDays(-ProjectionDays)

	for _, tx := range transactions {
		if tx.Type != domain.TypeExpense {
			continue
		}
		d, err := civil.ParseDate(tx.Date)
		if err != nil {
			continue
		}
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
		if d.After(windowStart) {
			totalRecent += safeNum(tx.Amount)
		}
	}

	if !found {
		return 0
	}

	days := today.DaysSince(earliest)
	if days < 1 {
		days = 1
	}
	if days > ProjectionDays {
		days = ProjectionDays
	}

	return totalRecent / float64(days)
}
