package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kpi-master/internal/errors"
	"kpi-master/internal/models"
)

type forecastService struct {
	logger *zap.Logger
}

// NewForecastService creates the income forecaster.
func NewForecastService(logger *zap.Logger) ForecastService {
	return &forecastService{logger: logger}
}

// Forecast projects total daily income for the horizon days immediately
// following the period end. Two deterministic series are produced from
// the trailing window of observed totals: Simple holds the window's
// arithmetic mean flat, Trend evaluates an ordinary-least-squares line
// fitted over the window. Projections may go negative, matching the fact
// that daily income itself can be negative.
func (s *forecastService) Forecast(ctx context.Context, income models.DailyIncome, period models.Period, horizon, window int) (*models.ForecastReport, error) {
	if horizon <= 0 {
		return nil, &errors.ErrValidation{Field: "horizon", Message: "must be positive"}
	}
	if window <= 0 {
		return nil, &errors.ErrValidation{Field: "window", Message: "must be positive"}
	}

	days := period.Days()
	if len(days) > window {
		days = days[len(days)-window:]
	}
	if len(days) == 0 {
		return nil, &errors.ErrValidation{Field: "period", Message: "no observed days to forecast from"}
	}

	totals := make([]decimal.Decimal, len(days))
	sum := decimal.Zero
	for i, day := range days {
		totals[i] = income[day].Total()
		sum = sum.Add(totals[i])
	}

	n := decimal.NewFromInt(int64(len(totals)))
	mean := sum.Div(n)
	slope, intercept := fitLine(totals)

	report := &models.ForecastReport{
		AsOf:       period.End,
		WindowDays: len(totals),
		Points:     make([]models.ForecastPoint, 0, horizon),
	}
	for i := 1; i <= horizon; i++ {
		x := decimal.NewFromInt(int64(len(totals) - 1 + i))
		report.Points = append(report.Points, models.ForecastPoint{
			Date:   period.End.AddDays(i),
			Simple: mean.Round(4),
			Trend:  slope.Mul(x).Add(intercept).Round(4),
		})
	}

	s.logger.Info("forecast generated",
		zap.String("as_of", string(report.AsOf)),
		zap.Int("window_days", report.WindowDays),
		zap.Int("horizon", horizon))

	return report, nil
}

// fitLine runs ordinary least squares over y values at x = 0..n-1,
// returning slope and intercept. A single observation yields a flat line.
func fitLine(ys []decimal.Decimal) (slope, intercept decimal.Decimal) {
	n := int64(len(ys))
	if n == 1 {
		return decimal.Zero, ys[0]
	}

	var sumX, sumY, sumXY, sumXX decimal.Decimal
	for i, y := range ys {
		x := decimal.NewFromInt(int64(i))
		sumX = sumX.Add(x)
		sumY = sumY.Add(y)
		sumXY = sumXY.Add(x.Mul(y))
		sumXX = sumXX.Add(x.Mul(x))
	}

	count := decimal.NewFromInt(n)
	denom := count.Mul(sumXX).Sub(sumX.Mul(sumX))
	if denom.IsZero() {
		return decimal.Zero, sumY.Div(count)
	}
	slope = count.Mul(sumXY).Sub(sumX.Mul(sumY)).Div(denom)
	intercept = sumY.Sub(slope.Mul(sumX)).Div(count)
	return slope, intercept
}
