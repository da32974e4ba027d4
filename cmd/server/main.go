package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kpi-master/internal/config"
	"kpi-master/internal/handlers"
	"kpi-master/internal/loader"
	"kpi-master/internal/logger"
	"kpi-master/internal/metrics"
	"kpi-master/internal/models"
	"kpi-master/internal/services"
	"kpi-master/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("invalid configuration", zap.Error(err))
	}

	tables := loader.New(cfg.DataDir, zlog)
	pipeline := services.NewPipeline(zlog)

	compute := func(ctx context.Context) (*models.Snapshot, error) {
		started := time.Now()
		dataset, diags, err := tables.LoadAll()
		if err != nil {
			metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		snap, err := pipeline.Run(ctx, dataset, cfg.Period, cfg.ForecastHorizon, cfg.ForecastWindow, diags)
		if err != nil {
			metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.PipelineRunsTotal.WithLabelValues("ok").Inc()
		metrics.PipelineDuration.Observe(time.Since(started).Seconds())
		metrics.SnapshotDiagnostics.Set(float64(len(snap.Diagnostics)))
		return snap, nil
	}

	snapshots := store.New()
	if snap, err := compute(context.Background()); err != nil {
		// Serve anyway: /health and /api/refresh stay reachable while
		// every data endpoint answers 503 until a run succeeds.
		zlog.Error("startup computation failed, serving without data", zap.Error(err))
	} else {
		snapshots.Swap(snap)
	}

	kpiHandler := handlers.NewKPIHandler(snapshots, compute, cfg.TopN, zlog)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "kpi-master-backend",
		})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", kpiHandler.HandleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/sales", kpiHandler.HandleSales).Methods(http.MethodGet)
	api.HandleFunc("/sales/cumulative", kpiHandler.HandleCumulativeSales).Methods(http.MethodGet)
	api.HandleFunc("/sales/breakdown", kpiHandler.HandleSalesBreakdown).Methods(http.MethodGet)
	api.HandleFunc("/clients", kpiHandler.HandleClients).Methods(http.MethodGet)
	api.HandleFunc("/clients/cumulative", kpiHandler.HandleCumulativeClients).Methods(http.MethodGet)
	api.HandleFunc("/clients/breakdown", kpiHandler.HandleClientBreakdown).Methods(http.MethodGet)
	api.HandleFunc("/funds", kpiHandler.HandleFunds).Methods(http.MethodGet)
	api.HandleFunc("/holdings", kpiHandler.HandleHoldings).Methods(http.MethodGet)
	api.HandleFunc("/statistics", kpiHandler.HandleStatistics).Methods(http.MethodGet)
	api.HandleFunc("/forecast", kpiHandler.HandleForecast).Methods(http.MethodGet)
	api.HandleFunc("/diagnostics", kpiHandler.HandleDiagnostics).Methods(http.MethodGet)
	api.HandleFunc("/refresh", kpiHandler.HandleRefresh).Methods(http.MethodPost)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// CORS middleware for the dashboard front end
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	requestID := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r)
		})
	}

	if cfg.RefreshSchedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.RefreshSchedule, func() {
			snap, err := compute(context.Background())
			if err != nil {
				zlog.Error("scheduled refresh failed, keeping current snapshot", zap.Error(err))
				return
			}
			snapshots.Swap(snap)
			zlog.Info("scheduled refresh complete", zap.Int("diagnostics", len(snap.Diagnostics)))
		})
		if err != nil {
			zlog.Fatal("invalid REFRESH_SCHEDULE", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, corsHandler(requestID(metrics.Middleware(router)))); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
