package engine

import (
	"github.com/agusantonetti/smartmoney/internal/domain"
)

// EventSummary is the spend rollup for one travel event.
type EventSummary struct {
	Event     domain.TravelEvent `json:"event"`
	Spent     float64            `json:"spent"`
	Remaining float64            `json:"remaining"`
	OverCap   bool               `json:"overCap"`
}

// EventSummaries rolls expense transactions tagged with an eventId up into
// per-event totals. Events without a budget cap report remaining 0 and are
// never over cap.
func EventSummaries(transactions []domain.Transaction, events []domain.TravelEvent) []EventSummary {
	spent := map[string]float64{}
	for _, tx := range transactions {
		if tx.Type == domain.TypeExpense && tx.EventID != "" {
			spent[tx.EventID] += safeNum(tx.Amount)
		}
	}

	summaries := make([]EventSummary, 0, len(events))
	for _, ev := range events {
		s := EventSummary{Event: ev, Spent: spent[ev.ID]}
		if ev.Budget > 0 {
			s.Remaining = ev.Budget - s.Spent
			s.OverCap = s.Spent > ev.Budget
		}
		summaries = append(summaries, s)
	}
	return summaries
}
