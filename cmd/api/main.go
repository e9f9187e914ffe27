package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/agusantonetti/smartmoney/internal/analytics"
	"github.com/agusantonetti/smartmoney/internal/api/handlers"
	"github.com/agusantonetti/smartmoney/internal/api/middleware"
	"github.com/agusantonetti/smartmoney/internal/assistant"
	"github.com/agusantonetti/smartmoney/internal/config"
	"github.com/agusantonetti/smartmoney/internal/jobs"
	jobsmem "github.com/agusantonetti/smartmoney/internal/jobs/inmemory"
	"github.com/agusantonetti/smartmoney/internal/logger"
	"github.com/agusantonetti/smartmoney/internal/rates"
	"github.com/agusantonetti/smartmoney/internal/realtime"
	"github.com/agusantonetti/smartmoney/internal/state"
	"github.com/agusantonetti/smartmoney/internal/store"
	"github.com/agusantonetti/smartmoney/internal/store/gcs"
	storemem "github.com/agusantonetti/smartmoney/internal/store/inmemory"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	ctx := context.Background()

	// Document store: GCS when a bucket is configured, in-memory otherwise.
	var docStore store.Store
	if cfg.GCSBucket != "" {
		s, err := gcs.New(ctx, cfg.GCSBucket, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create document store")
		}
		docStore = s
	} else {
		log.Warn().Msg("No GCS bucket configured - documents are kept in memory only")
		docStore = storemem.New()
	}
	defer docStore.Close()

	// Analytics exporter: optional, driven by the jobs queue.
	var exporter *analytics.Exporter
	if cfg.BigQueryProject != "" {
		e, err := analytics.NewExporter(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create analytics exporter")
		}
		exporter = e
		defer exporter.Close()
	} else {
		log.Warn().Msg("No BigQuery project configured - snapshot export is disabled")
	}

	// Job infrastructure for snapshot exports.
	jobStore := jobsmem.NewStore()
	jobQueue := jobsmem.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		if exporter == nil {
			return nil
		}
		return exporter.HandleJob(ctx, job)
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Realtime hub and state manager.
	hub := realtime.NewHub(log)

	var publisher jobs.Publisher
	if exporter != nil {
		publisher = jobQueue
	}
	manager := state.NewManager(docStore, hub, publisher, log)
	defer manager.Close()

	rateClient := rates.NewClient(cfg.RatesURL, cfg.DefaultDollarRate, log)
	asst := assistant.New(cfg.AssistantModel, log)

	// Initialize handlers
	stateHandler := handlers.NewStateHandler(manager, log)
	insightsHandler := handlers.NewInsightsHandler(manager, rateClient, log)
	ratesHandler := handlers.NewRatesHandler(rateClient, log)
	assistantHandler := handlers.NewAssistantHandler(manager, asst, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	var historyReader handlers.HistoryReader
	if exporter != nil {
		historyReader = exporter
	}
	analyticsHandler := handlers.NewAnalyticsHandler(historyReader, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			stateHandler.GetState(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			stateHandler.CreateTransaction(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			txID := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
			if txID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
				return
			}
			stateHandler.DeleteTransaction(w, r, txID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			stateHandler.UpdateProfile(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.Metrics(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/projection", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.Projection(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/debts/snowball", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.Snowball(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budget", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.Budget(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/income/projection", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.IncomeProjection(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.Events(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/rates", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ratesHandler.GetRate(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/assistant", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assistantHandler.Ask(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/analytics/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			analyticsHandler.History(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		s, err := manager.Get(r.Context(), userID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to load state")
			return
		}
		hub.ServeWS(w, r, userID, s.Document())
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.UserID(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
