package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agusantonetti/smartmoney/internal/api/middleware"
	"github.com/agusantonetti/smartmoney/internal/domain"
	"github.com/agusantonetti/smartmoney/internal/state"
	"github.com/agusantonetti/smartmoney/internal/store/inmemory"
)

func newTestManager(t *testing.T) *state.Manager {
	t.Helper()
	st := inmemory.New()
	t.Cleanup(func() { st.Close() })
	m := state.NewManager(st, nil, nil, zerolog.Nop())
	t.Cleanup(m.Close)
	return m
}

func doRequest(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	middleware.UserID(h).ServeHTTP(rec, req)
	return rec
}

func TestGetStateReturnsDefaultDocument(t *testing.T) {
	h := NewStateHandler(newTestManager(t), zerolog.Nop())

	rec := doRequest(h.GetState, http.MethodGet, "/api/state", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		Profile      domain.FinancialProfile `json:"profile"`
		Transactions []domain.Transaction    `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if doc.Profile.Name != "Viajero" {
		t.Errorf("expected default profile, got %q", doc.Profile.Name)
	}
}

func TestCreateTransaction(t *testing.T) {
	h := NewStateHandler(newTestManager(t), zerolog.Nop())

	body := `{"type": "expense", "amount": 2500, "category": "Comida", "date": "2025-03-10"}`
	rec := doRequest(h.CreateTransaction, http.MethodPost, "/api/transactions", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Transaction domain.Transaction `json:"transaction"`
		Count       int                `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Transaction.ID == "" {
		t.Errorf("expected generated transaction ID")
	}
	if resp.Count != 1 {
		t.Errorf("expected count 1, got %d", resp.Count)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	h := NewStateHandler(newTestManager(t), zerolog.Nop())

	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"type": "expense", "amount": 0, "category": "Comida", "date": "2025-03-10"}`},
		{"negative amount", `{"type": "expense", "amount": -5, "category": "Comida", "date": "2025-03-10"}`},
		{"unknown type", `{"type": "transfer", "amount": 10, "category": "Comida", "date": "2025-03-10"}`},
		{"missing category", `{"type": "expense", "amount": 10, "date": "2025-03-10"}`},
		{"malformed date", `{"type": "expense", "amount": 10, "category": "Comida", "date": "10/03/2025"}`},
		{"not json", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h.CreateTransaction, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	m := newTestManager(t)
	h := NewStateHandler(m, zerolog.Nop())

	body := `{"id": "tx-1", "type": "expense", "amount": 100, "category": "Comida", "date": "2025-03-10"}`
	if rec := doRequest(h.CreateTransaction, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
		t.Fatalf("setup failed: %d", rec.Code)
	}

	rec := doRequest(func(w http.ResponseWriter, r *http.Request) {
		h.DeleteTransaction(w, r, "tx-1")
	}, http.MethodDelete, "/api/transactions/tx-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	stateRec := doRequest(h.GetState, http.MethodGet, "/api/state", "")
	if strings.Contains(stateRec.Body.String(), "tx-1") {
		t.Errorf("transaction still present after delete")
	}
}

func TestUpdateProfileRejectsInvalidBillingDay(t *testing.T) {
	h := NewStateHandler(newTestManager(t), zerolog.Nop())

	body := `{"name": "Ana", "subscriptions": [{"id": "s1", "name": "Netflix", "amount": 10, "currency": "USD", "billingDay": 32}]}`
	rec := doRequest(h.UpdateProfile, http.MethodPut, "/api/profile", body)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := newTestManager(t)
	sh := NewStateHandler(m, zerolog.Nop())
	ih := NewInsightsHandler(m, nil, zerolog.Nop())

	profile := `{"name": "Ana", "initialBalance": 10000}`
	if rec := doRequest(sh.UpdateProfile, http.MethodPut, "/api/profile", profile); rec.Code != http.StatusOK {
		t.Fatalf("profile setup failed: %d", rec.Code)
	}
	tx := `{"type": "expense", "amount": 1500, "category": "Comida", "date": "2025-03-10"}`
	if rec := doRequest(sh.CreateTransaction, http.MethodPost, "/api/transactions", tx); rec.Code != http.StatusCreated {
		t.Fatalf("transaction setup failed: %d", rec.Code)
	}

	rec := doRequest(ih.Metrics, http.MethodGet, "/api/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var metrics domain.FinancialMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if metrics.Balance != 10000 {
		t.Errorf("expected balance 10000, got %v", metrics.Balance)
	}
	if metrics.Expense != 1500 {
		t.Errorf("expected expense 1500, got %v", metrics.Expense)
	}
}

func TestBudgetRejectsMalformedMonth(t *testing.T) {
	ih := NewInsightsHandler(newTestManager(t), nil, zerolog.Nop())

	rec := doRequest(ih.Budget, http.MethodGet, "/api/budget?month=March", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSnowballEmptyDebts(t *testing.T) {
	ih := NewInsightsHandler(newTestManager(t), nil, zerolog.Nop())

	rec := doRequest(ih.Snowball, http.MethodGet, "/api/debts/snowball", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Debts []domain.Debt `json:"debts"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Count != 0 || resp.Debts == nil {
		t.Errorf("expected empty debt list, got %+v", resp)
	}
}

func TestUserIsolation(t *testing.T) {
	m := newTestManager(t)
	h := NewStateHandler(m, zerolog.Nop())

	body := `{"type": "expense", "amount": 100, "category": "Comida", "date": "2025-03-10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	middleware.UserID(http.HandlerFunc(h.CreateTransaction)).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup failed: %d", rec.Code)
	}

	// The default user must not see alice's transaction.
	stateRec := doRequest(h.GetState, http.MethodGet, "/api/state", "")
	var doc struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(stateRec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(doc.Transactions) != 0 {
		t.Errorf("expected empty document for default user, got %d transactions", len(doc.Transactions))
	}
}
