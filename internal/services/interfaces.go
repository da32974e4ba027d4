package services

import (
	"context"

	"kpi-master/internal/models"
)

// ProjectionService replays the trade log over the opening book to build
// the day-by-day position series.
type ProjectionService interface {
	Project(ctx context.Context, holdings []*models.Holding, trades []*models.Trade, period models.Period) (models.DailyHoldings, []models.Diagnostic, error)
}

// AttributionResult bundles the income rollups produced from one pass over
// the daily holdings.
type AttributionResult struct {
	Income      models.DailyIncome
	Sales       models.SeriesByKey
	Clients     models.SeriesByKey
	Funds       models.SeriesByKey
	Diagnostics []models.Diagnostic
}

// AttributionService converts daily positions into attributed income,
// rolled up by salesperson, client and fund.
type AttributionService interface {
	Attribute(ctx context.Context, holdings models.DailyHoldings, products map[string]*models.ProductInfo, clients map[string]*models.ClientInfo) (*AttributionResult, error)
}

// ForecastService projects total daily income over a fixed horizon.
type ForecastService interface {
	Forecast(ctx context.Context, income models.DailyIncome, period models.Period, horizon, window int) (*models.ForecastReport, error)
}
