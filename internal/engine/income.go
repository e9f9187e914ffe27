package engine

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

// TimelineMonths is the span of the income timeline visualization.
const TimelineMonths = 6

// MonthProjection is one month of the projected-income timeline.
type MonthProjection struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// MonthlyProjection resolves an income source to its monthly-equivalent value
// in the base currency for the month containing referenceDate.
//
// Inactive contracts (archived, or with the month's midpoint outside the
// [startDate, endDate] window) contribute 0. Creator/variable sources are
// valued by the payments actually entered for the month; their contract
// amount is ignored. Fixed sources scale the contract amount by frequency:
// biweekly pays twice a month, one-time contracts contribute nothing to a
// recurring projection.
func MonthlyProjection(src domain.IncomeSource, dollarRate float64, referenceDate time.Time) float64 {
	if !ActiveInMonth(src, referenceDate) {
		return 0
	}

	rate := 1.0
	if src.Currency == domain.CurrencyUSD {
		rate = safeNum(dollarRate)
	}

	if src.IsCreatorSource {
		monthKey := referenceDate.Format("2006-01")
		var total float64
		for _, p := range src.Payments {
			if strings.HasPrefix(p.Period, monthKey) {
				total += safeNum(p.RealAmount) * rate
			}
		}
		return safeNum(total)
	}

	base := safeNum(src.Amount) * rate
	switch src.Frequency {
	case domain.FrequencyBiweekly:
		return base * 2
	case domain.FrequencyOneTime:
		return 0
	default:
		return base
	}
}

// TotalMonthlyProjection sums MonthlyProjection over all sources.
func TotalMonthlyProjection(sources []domain.IncomeSource, dollarRate float64, referenceDate time.Time) float64 {
	var total float64
	for _, src := range sources {
		total += MonthlyProjection(src, dollarRate, referenceDate)
	}
	return safeNum(total)
}

// MonthlyTimeline projects total income for TimelineMonths consecutive
// months starting with the month of referenceDate. Months are stepped from a
// first-of-month anchor; adding months to the raw reference date would
// normalize Jan 31 + 1 month to Mar 3 and skip February.
func MonthlyTimeline(sources []domain.IncomeSource, dollarRate float64, referenceDate time.Time) []MonthProjection {
	anchor := time.Date(referenceDate.Year(), referenceDate.Month(), 1, 0, 0, 0, 0, referenceDate.Location())

	timeline := make([]MonthProjection, 0, TimelineMonths)
	for i := 0; i < TimelineMonths; i++ {
		ref := anchor.AddDate(0, i, 0)
		timeline = append(timeline, MonthProjection{
			Month: ref.Format("2006-01"),
			Total: TotalMonthlyProjection(sources, dollarRate, ref),
		})
	}
	return timeline
}

// ActiveInMonth reports whether the contract counts for the month containing
// referenceDate. The midpoint of the month is tested date-only against the
// contract window, so a contract ending mid-month still counts for it.
func ActiveInMonth(src domain.IncomeSource, referenceDate time.Time) bool {
	if !src.IsActive {
		return false
	}

	mid := civil.Date{Year: referenceDate.Year(), Month: referenceDate.Month(), Day: 15}

	if src.StartDate != "" {
		if start, err := civil.ParseDate(src.StartDate); err == nil && mid.Before(start) {
			return false
		}
	}
	if src.EndDate != "" {
		if end, err := civil.ParseDate(src.EndDate); err == nil && mid.After(end) {
			return false
		}
	}
	return true
}
