package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agusantonetti/smartmoney/internal/analytics"
	"github.com/agusantonetti/smartmoney/internal/api/middleware"
	"github.com/agusantonetti/smartmoney/internal/assistant"
	"github.com/agusantonetti/smartmoney/internal/domain"
	"github.com/agusantonetti/smartmoney/internal/engine"
	"github.com/agusantonetti/smartmoney/internal/jobs"
	"github.com/agusantonetti/smartmoney/internal/rates"
	"github.com/agusantonetti/smartmoney/internal/state"
)

// StateHandler serves the document and its mutations.
type StateHandler struct {
	manager *state.Manager
	log     zerolog.Logger
}

// NewStateHandler creates a new state handler.
func NewStateHandler(manager *state.Manager, log zerolog.Logger) *StateHandler {
	return &StateHandler{manager: manager, log: log}
}

// GetState handles GET /api/state
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	s, err := h.manager.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load state")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, s.Document())
}

// CreateTransaction handles POST /api/transactions
func (h *StateHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Date == "" {
		tx.Date = time.Now().Format("2006-01-02")
	}

	if err := domain.ValidateTransaction(tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	next, err := h.manager.Apply(ctx, userID, state.AddTransaction{Transaction: tx})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to save transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": tx,
		"count":       len(next.Transactions),
	})
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *StateHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, txID string) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	if _, err := h.manager.Apply(ctx, userID, state.DeleteTransaction{ID: txID}); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"id": txID, "status": "deleted"})
}

// UpdateProfile handles PUT /api/profile
func (h *StateHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	var profile domain.FinancialProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := domain.ValidateProfile(profile); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	next, err := h.manager.Apply(ctx, userID, state.UpdateProfile{Profile: profile})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to save profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, next.Profile)
}

// InsightsHandler serves computed views over the document.
type InsightsHandler struct {
	manager *state.Manager
	rates   *rates.Client
	log     zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(manager *state.Manager, rc *rates.Client, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{manager: manager, rates: rc, log: log}
}

// Metrics handles GET /api/metrics
func (h *InsightsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	s, err := h.manager.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, engine.ComputeMetrics(s.Transactions, s.Profile))
}

// Projection handles GET /api/projection
func (h *InsightsHandler) Projection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	s, err := h.manager.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute projection")
		return
	}

	metrics := engine.ComputeMetrics(s.Transactions, s.Profile)
	proj := engine.Project(s.Transactions, s.Profile, metrics.LiquidAssets, time.Now())

	middleware.WriteJSON(w, http.StatusOK, proj)
}

// Snowball handles GET /api/debts/snowball
func (h *InsightsHandler) Snowball(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	s, err := h.manager.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to order debts")
		return
	}

	order := engine.SnowballOrder(s.Profile.Debts)
	if order == nil {
		order = []domain.Debt{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"debts": order,
		"count": len(order),
	})
}

// Budget handles GET /api/budget?month=YYYY-MM
func (h *InsightsHandler) Budget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid month format, expected YYYY-MM")
		return
	}

	s, err := h.manager.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute budget")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"month":      month,
		"categories": engine.BudgetReport(s.Transactions, s.Profile, month),
	})
}

// IncomeProjection handles GET /api/income/projection
func (h *InsightsHandler) IncomeProjection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	s, err := h.manager.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to project income")
		return
	}

	quote := h.rates.Current(ctx)
	rate := s.Profile.DollarRate(quote.Rate)
	now := time.Now()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dollarRate": rate,
		"monthTotal": engine.TotalMonthlyProjection(s.Profile.IncomeSources, rate, now),
		"timeline":   engine.MonthlyTimeline(s.Profile.IncomeSources, rate, now),
	})
}

// Events handles GET /api/events
func (h *InsightsHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	s, err := h.manager.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to summarize events")
		return
	}

	summaries := engine.EventSummaries(s.Transactions, s.Profile.Events)
	if summaries == nil {
		summaries = []engine.EventSummary{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": summaries,
		"count":  len(summaries),
	})
}

// RatesHandler serves the dollar quote.
type RatesHandler struct {
	rates *rates.Client
	log   zerolog.Logger
}

// NewRatesHandler creates a new rates handler.
func NewRatesHandler(rc *rates.Client, log zerolog.Logger) *RatesHandler {
	return &RatesHandler{rates: rc, log: log}
}

// GetRate handles GET /api/rates
func (h *RatesHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.rates.Current(r.Context()))
}

// AssistantHandler serves the finance assistant.
type AssistantHandler struct {
	manager   *state.Manager
	assistant *assistant.Assistant
	log       zerolog.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(manager *state.Manager, a *assistant.Assistant, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{manager: manager, assistant: a, log: log}
}

// Ask handles POST /api/assistant
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Question is required")
		return
	}

	s, err := h.manager.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to answer question")
		return
	}

	answer, err := h.assistant.Ask(ctx, req.Question, assistant.Snapshot{
		Profile:      s.Profile,
		Metrics:      engine.ComputeMetrics(s.Transactions, s.Profile),
		Transactions: s.Transactions,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Assistant request failed")
		middleware.WriteError(w, http.StatusBadGateway, "Assistant is unavailable")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, answer)
}

// HistoryReader serves monthly snapshot aggregates.
type HistoryReader interface {
	MonthlyHistory(ctx context.Context, userID string, months int) ([]*analytics.MonthlyPoint, error)
}

// AnalyticsHandler serves snapshot history.
type AnalyticsHandler struct {
	reader HistoryReader
	log    zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler. reader may be nil
// when no analytics backend is configured.
func NewAnalyticsHandler(reader HistoryReader, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{reader: reader, log: log}
}

// History handles GET /api/analytics/history?months=N
func (h *AnalyticsHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Analytics backend is not configured")
		return
	}

	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	months := 6
	if monthsStr := r.URL.Query().Get("months"); monthsStr != "" {
		if n, err := strconv.Atoi(monthsStr); err == nil && n > 0 && n <= 36 {
			months = n
		}
	}

	points, err := h.reader.MonthlyHistory(ctx, userID, months)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to query history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query history")
		return
	}

	if points == nil {
		points = []*analytics.MonthlyPoint{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"months": points,
		"count":  len(points),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: middleware.UserIDFromContext(ctx),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
