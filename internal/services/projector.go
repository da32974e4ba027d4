package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kpi-master/internal/errors"
	"kpi-master/internal/models"
)

type projectionService struct {
	logger *zap.Logger
}

// NewProjectionService creates the holdings projector.
func NewProjectionService(logger *zap.Logger) ProjectionService {
	return &projectionService{logger: logger}
}

// Project builds one PositionSet per calendar day in the period. The first
// day is the opening snapshot; each later day is the previous day plus all
// trade deltas dated that day. Trades dated outside the period are ignored
// and reported as diagnostics; trades dated on the period start are
// considered already reflected in the opening snapshot.
func (s *projectionService) Project(ctx context.Context, holdings []*models.Holding, trades []*models.Trade, period models.Period) (models.DailyHoldings, []models.Diagnostic, error) {
	if period.End.Before(period.Start) {
		return nil, nil, &errors.ErrValidation{Field: "period", Message: "end date before start date"}
	}

	byDate := make(map[models.Date][]*models.Trade)
	var diags []models.Diagnostic
	for _, t := range trades {
		if !period.Contains(t.Date) || t.Date == period.Start {
			diags = append(diags, models.Diagnostic{
				Date:   t.Date,
				Kind:   "trade",
				Entity: t.ClientID,
				Reason: models.ReasonOutOfRange,
				Detail: fmt.Sprintf("fund %s amount %s", t.FundID, t.Amount.String()),
			})
			continue
		}
		byDate[t.Date] = append(byDate[t.Date], t)
	}

	opening := make(models.PositionSet)
	for _, h := range holdings {
		opening.Add(h.ClientID, h.FundID, h.Value)
	}

	daily := models.DailyHoldings{period.Start: opening}
	current := opening
	for day := period.Start.AddDays(1); !day.After(period.End); day = day.AddDays(1) {
		next := current.Clone()
		for _, t := range byDate[day] {
			next.Add(t.ClientID, t.FundID, t.Amount)
		}
		daily[day] = next
		current = next
	}

	s.logger.Info("holdings projected",
		zap.String("start", string(period.Start)),
		zap.String("end", string(period.End)),
		zap.Int("days", len(daily)),
		zap.Int("trades_ignored", len(diags)))

	return daily, diags, nil
}
