package engine

import (
	"testing"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

func TestEventSummaries(t *testing.T) {
	events := []domain.TravelEvent{
		{ID: "e1", Name: "Bariloche", Budget: 1000, StartDate: "2025-02-01", Status: domain.EventActive},
		{ID: "e2", Name: "Córdoba", StartDate: "2025-03-01", Status: domain.EventActive},
	}
	txs := []domain.Transaction{
		{ID: "t1", Amount: 700, Category: "Comida", Type: domain.TypeExpense, Date: "2025-02-03", EventID: "e1"},
		{ID: "t2", Amount: 500, Category: "Hotel", Type: domain.TypeExpense, Date: "2025-02-04", EventID: "e1"},
		{ID: "t3", Amount: 100, Category: "Comida", Type: domain.TypeExpense, Date: "2025-03-05"},
		{ID: "t4", Amount: 999, Category: "Sueldo", Type: domain.TypeIncome, Date: "2025-03-01", EventID: "e2"},
	}

	summaries := EventSummaries(txs, events)
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}

	if summaries[0].Spent != 1200 {
		t.Errorf("e1 spent = %v, want 1200", summaries[0].Spent)
	}
	if !summaries[0].OverCap || summaries[0].Remaining != -200 {
		t.Errorf("e1 = %+v, want over cap with remaining -200", summaries[0])
	}

	// Income tagged to an event does not count as spend; no budget means no cap.
	if summaries[1].Spent != 0 || summaries[1].OverCap {
		t.Errorf("e2 = %+v, want no spend and no cap", summaries[1])
	}
}
