package assistant

import (
	"strings"
	"testing"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain json",
			raw:  `{"reply": "ok"}`,
			want: `{"reply": "ok"}`,
		},
		{
			name: "json code fence",
			raw:  "```json\n{\"reply\": \"ok\"}\n```",
			want: `{"reply": "ok"}`,
		},
		{
			name: "bare code fence",
			raw:  "```\n{\"reply\": \"ok\"}\n```",
			want: `{"reply": "ok"}`,
		},
		{
			name: "prose around object",
			raw:  "Here you go:\n{\"reply\": \"ok\"}\nHope that helps!",
			want: `{"reply": "ok"}`,
		},
		{
			name: "surrounding whitespace",
			raw:  "\n\n  {\"reply\": \"ok\"}  \n",
			want: `{"reply": "ok"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuildPromptIncludesContext(t *testing.T) {
	snap := Snapshot{
		Profile: domain.DefaultProfile("Ana"),
		Metrics: domain.FinancialMetrics{Balance: 12345, HealthScore: 70},
		Transactions: []domain.Transaction{
			{ID: "t1", Type: domain.TypeExpense, Amount: 2500, Category: "Comida", Date: "2025-03-10"},
		},
	}

	prompt, err := buildPrompt("¿Cuánto gasté en comida?", snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"12345", "Comida", "¿Cuánto gasté en comida?", "STRICT JSON"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptCapsTransactions(t *testing.T) {
	snap := Snapshot{Profile: domain.DefaultProfile("")}
	for i := 0; i < 50; i++ {
		snap.Transactions = append(snap.Transactions, domain.Transaction{
			ID: "keep-me", Type: domain.TypeExpense, Amount: 1, Category: "Otros", Date: "2025-03-01",
		})
	}
	snap.Transactions[recentTransactionLimit].ID = "dropped"

	prompt, err := buildPrompt("q", snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(prompt, "dropped") {
		t.Errorf("prompt includes transactions past the cap")
	}
}
