package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kpi-master/internal/models"
)

// Pipeline runs the full batch computation in dependency order:
// project → attribute → aggregate → forecast → breakdown. It either
// returns a complete snapshot or an error, never a partial result, so
// the serving layer can publish its output atomically.
type Pipeline struct {
	projector  ProjectionService
	attributor AttributionService
	forecaster ForecastService
	logger     *zap.Logger
}

// NewPipeline wires the default service implementations.
func NewPipeline(logger *zap.Logger) *Pipeline {
	return &Pipeline{
		projector:  NewProjectionService(logger),
		attributor: NewAttributionService(logger),
		forecaster: NewForecastService(logger),
		logger:     logger,
	}
}

// Run executes one batch pass over the dataset. loadDiags carries
// row-level diagnostics from the loader so the snapshot reports every
// skipped entry in one place.
func (p *Pipeline) Run(ctx context.Context, ds *models.Dataset, period models.Period, horizon, window int, loadDiags []models.Diagnostic) (*models.Snapshot, error) {
	started := time.Now()

	holdings, projDiags, err := p.projector.Project(ctx, ds.Holdings, ds.Trades, period)
	if err != nil {
		return nil, err
	}

	attr, err := p.attributor.Attribute(ctx, holdings, ds.Products, ds.Clients)
	if err != nil {
		return nil, err
	}

	forecast, err := p.forecaster.Forecast(ctx, attr.Income, period, horizon, window)
	if err != nil {
		return nil, err
	}

	diags := make([]models.Diagnostic, 0, len(loadDiags)+len(projDiags)+len(attr.Diagnostics))
	diags = append(diags, loadDiags...)
	diags = append(diags, projDiags...)
	diags = append(diags, attr.Diagnostics...)

	snapshot := &models.Snapshot{
		Period:            period,
		Holdings:          holdings,
		Income:            attr.Income,
		SalesIncome:       attr.Sales,
		ClientIncome:      attr.Clients,
		FundIncome:        attr.Funds,
		CumulativeSales:   Cumulative(attr.Sales),
		CumulativeClients: Cumulative(attr.Clients),
		Statistics:        BuildStatistics(attr.Sales, attr.Clients, attr.Funds, period),
		Dashboard:         BuildDashboard(attr.Sales, attr.Clients, attr.Funds),
		Forecast:          forecast,
		SalesBreakdown:    SalespersonSplit(attr.Income, ds.Clients),
		ClientSplit:       ClientSplit(attr.Income),
		Diagnostics:       diags,
	}

	p.logger.Info("pipeline complete",
		zap.String("start", string(period.Start)),
		zap.String("end", string(period.End)),
		zap.Int("diagnostics", len(diags)),
		zap.Duration("elapsed", time.Since(started)))

	return snapshot, nil
}
