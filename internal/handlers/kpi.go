package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kpi-master/internal/models"
	"kpi-master/internal/services"
	"kpi-master/internal/store"
)

// RefreshFunc reloads the input tables and recomputes a snapshot.
type RefreshFunc func(ctx context.Context) (*models.Snapshot, error)

// KPIHandler serves the pre-aggregated dashboard views. Every read
// endpoint works off the published snapshot; when none is available the
// handler answers 503 rather than exposing partial or stale state.
type KPIHandler struct {
	store   *store.SnapshotStore
	refresh RefreshFunc
	topN    int
	logger  *zap.Logger
}

// NewKPIHandler creates the handler. topN bounds the default ranking
// length on breakdown endpoints.
func NewKPIHandler(st *store.SnapshotStore, refresh RefreshFunc, topN int, logger *zap.Logger) *KPIHandler {
	return &KPIHandler{store: st, refresh: refresh, topN: topN, logger: logger}
}

// HandleDashboard handles GET /api/dashboard
// @Summary Get dashboard summary
// @Description Total income plus top salesperson, client and fund
// @Tags kpi
// @Produce json
// @Success 200 {object} models.DashboardSummary
// @Failure 503 {string} string "Data unavailable"
// @Router /dashboard [get]
func (h *KPIHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap.Dashboard)
}

// HandleSales handles GET /api/sales
// @Summary Get daily income by salesperson
// @Tags kpi
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} models.SeriesByKey
// @Failure 503 {string} string "Data unavailable"
// @Router /sales [get]
func (h *KPIHandler) HandleSales(w http.ResponseWriter, r *http.Request) {
	h.serveSeries(w, r, func(snap *models.Snapshot) models.SeriesByKey { return snap.SalesIncome })
}

// HandleClients handles GET /api/clients
// @Summary Get daily income by client
// @Tags kpi
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} models.SeriesByKey
// @Failure 503 {string} string "Data unavailable"
// @Router /clients [get]
func (h *KPIHandler) HandleClients(w http.ResponseWriter, r *http.Request) {
	h.serveSeries(w, r, func(snap *models.Snapshot) models.SeriesByKey { return snap.ClientIncome })
}

// HandleFunds handles GET /api/funds
// @Summary Get daily income by fund
// @Tags kpi
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} models.SeriesByKey
// @Failure 503 {string} string "Data unavailable"
// @Router /funds [get]
func (h *KPIHandler) HandleFunds(w http.ResponseWriter, r *http.Request) {
	h.serveSeries(w, r, func(snap *models.Snapshot) models.SeriesByKey { return snap.FundIncome })
}

// HandleCumulativeSales handles GET /api/sales/cumulative
// @Summary Get cumulative income by salesperson
// @Tags kpi
// @Produce json
// @Success 200 {object} models.SeriesByKey
// @Failure 503 {string} string "Data unavailable"
// @Router /sales/cumulative [get]
func (h *KPIHandler) HandleCumulativeSales(w http.ResponseWriter, r *http.Request) {
	h.serveSeries(w, r, func(snap *models.Snapshot) models.SeriesByKey { return snap.CumulativeSales })
}

// HandleCumulativeClients handles GET /api/clients/cumulative
// @Summary Get cumulative income by client
// @Tags kpi
// @Produce json
// @Success 200 {object} models.SeriesByKey
// @Failure 503 {string} string "Data unavailable"
// @Router /clients/cumulative [get]
func (h *KPIHandler) HandleCumulativeClients(w http.ResponseWriter, r *http.Request) {
	h.serveSeries(w, r, func(snap *models.Snapshot) models.SeriesByKey { return snap.CumulativeClients })
}

// HandleHoldings handles GET /api/holdings
// @Summary Get daily position values per client and fund
// @Tags kpi
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} models.DailyHoldings
// @Failure 503 {string} string "Data unavailable"
// @Router /holdings [get]
func (h *KPIHandler) HandleHoldings(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	period, err := parsePeriod(r, snap.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := make(models.DailyHoldings)
	for day, positions := range snap.Holdings {
		if period.Contains(day) {
			out[day] = positions
		}
	}
	writeJSON(w, out)
}

// HandleStatistics handles GET /api/statistics
// @Summary Get per-entity summary statistics
// @Tags kpi
// @Produce json
// @Success 200 {object} models.StatisticsReport
// @Failure 503 {string} string "Data unavailable"
// @Router /statistics [get]
func (h *KPIHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap.Statistics)
}

// HandleForecast handles GET /api/forecast
// @Summary Get the 30-day income forecast
// @Tags kpi
// @Produce json
// @Success 200 {object} models.ForecastReport
// @Failure 503 {string} string "Data unavailable"
// @Router /forecast [get]
func (h *KPIHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap.Forecast)
}

// HandleDiagnostics handles GET /api/diagnostics
// @Summary Get data-quality diagnostics from the last pipeline run
// @Tags kpi
// @Produce json
// @Success 200 {array} models.Diagnostic
// @Failure 503 {string} string "Data unavailable"
// @Router /diagnostics [get]
func (h *KPIHandler) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	diags := snap.Diagnostics
	if diags == nil {
		diags = []models.Diagnostic{}
	}
	writeJSON(w, diags)
}

// salespersonView is one salesperson's day slice with rankings attached.
type salespersonView struct {
	Total      decimal.Decimal            `json:"total"`
	Clients    map[string]decimal.Decimal `json:"clients"`
	Funds      map[string]decimal.Decimal `json:"funds"`
	TopClients []models.RankedEntry       `json:"top_clients"`
	TopFunds   []models.RankedEntry       `json:"top_funds"`
}

// clientView is one client's day slice with rankings attached.
type clientView struct {
	Total    decimal.Decimal            `json:"total"`
	Funds    map[string]decimal.Decimal `json:"funds"`
	TopFunds []models.RankedEntry       `json:"top_funds"`
}

// HandleSalesBreakdown handles GET /api/sales/breakdown
// @Summary Get per-salesperson client and fund composition
// @Tags kpi
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param top query int false "Ranking length (default 5)"
// @Success 200 {object} map[models.Date]map[string]handlers.salespersonView
// @Failure 503 {string} string "Data unavailable"
// @Router /sales/breakdown [get]
func (h *KPIHandler) HandleSalesBreakdown(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	period, err := parsePeriod(r, snap.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	topN := parseTop(r, h.topN)

	out := make(map[models.Date]map[string]*salespersonView)
	for day, bySales := range snap.SalesBreakdown {
		if !period.Contains(day) {
			continue
		}
		views := make(map[string]*salespersonView, len(bySales))
		for salesperson, slice := range bySales {
			views[salesperson] = &salespersonView{
				Total:      slice.Total,
				Clients:    slice.Clients,
				Funds:      slice.Funds,
				TopClients: services.TopEntries(slice.Clients, topN),
				TopFunds:   services.TopEntries(slice.Funds, topN),
			}
		}
		out[day] = views
	}
	writeJSON(w, out)
}

// HandleClientBreakdown handles GET /api/clients/breakdown
// @Summary Get per-client fund composition
// @Tags kpi
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param top query int false "Ranking length (default 5)"
// @Success 200 {object} map[models.Date]map[string]handlers.clientView
// @Failure 503 {string} string "Data unavailable"
// @Router /clients/breakdown [get]
func (h *KPIHandler) HandleClientBreakdown(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	period, err := parsePeriod(r, snap.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	topN := parseTop(r, h.topN)

	out := make(map[models.Date]map[string]*clientView)
	for day, byClient := range snap.ClientSplit {
		if !period.Contains(day) {
			continue
		}
		views := make(map[string]*clientView, len(byClient))
		for clientID, slice := range byClient {
			views[clientID] = &clientView{
				Total:    slice.Total,
				Funds:    slice.Funds,
				TopFunds: services.TopEntries(slice.Funds, topN),
			}
		}
		out[day] = views
	}
	writeJSON(w, out)
}

// HandleRefresh handles POST /api/refresh
// @Summary Reload input tables and recompute all rollups
// @Description Builds a fresh snapshot and atomically swaps it in
// @Tags kpi
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {string} string "Refresh failed"
// @Router /refresh [post]
func (h *KPIHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, err := h.refresh(r.Context())
	if err != nil {
		h.logger.Error("refresh failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "refresh failed: "+err.Error())
		return
	}

	h.store.Swap(snap)
	writeJSON(w, map[string]interface{}{
		"status":      "refreshed",
		"days":        len(snap.Income),
		"diagnostics": len(snap.Diagnostics),
	})
}

func (h *KPIHandler) serveSeries(w http.ResponseWriter, r *http.Request, pick func(*models.Snapshot) models.SeriesByKey) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	period, err := parsePeriod(r, snap.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series := pick(snap)
	out := make(models.SeriesByKey)
	for day, vals := range series {
		if period.Contains(day) {
			out[day] = vals
		}
	}
	writeJSON(w, out)
}

// snapshot loads the published snapshot, answering 503 when the pipeline
// has not yet produced one.
func (h *KPIHandler) snapshot(w http.ResponseWriter, r *http.Request) (*models.Snapshot, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil, false
	}
	snap, ok := h.store.Load()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "data unavailable")
		return nil, false
	}
	return snap, true
}

func parsePeriod(r *http.Request, fallback models.Period) (models.Period, error) {
	period := fallback
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return period, err
		}
		period.Start = d
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return period, err
		}
		period.End = d
	}
	return period, nil
}

func parseTop(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
