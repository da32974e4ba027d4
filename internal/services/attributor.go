package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"kpi-master/internal/models"
)

type attributionService struct {
	logger *zap.Logger
}

// NewAttributionService creates the income attributor.
func NewAttributionService(logger *zap.Logger) AttributionService {
	return &attributionService{logger: logger}
}

// Attribute walks every (date, client, fund) position, applies the fund's
// valuation rule and rolls the income up by salesperson, client and fund.
// Funds without product metadata contribute zero and are recorded once per
// day in the diagnostics; clients missing from the roster attribute to the
// Unknown salesperson.
func (s *attributionService) Attribute(ctx context.Context, holdings models.DailyHoldings, products map[string]*models.ProductInfo, clients map[string]*models.ClientInfo) (*AttributionResult, error) {
	result := &AttributionResult{
		Income:  make(models.DailyIncome, len(holdings)),
		Sales:   make(models.SeriesByKey, len(holdings)),
		Clients: make(models.SeriesByKey, len(holdings)),
		Funds:   make(models.SeriesByKey, len(holdings)),
	}

	unrostered := make(map[string]bool)

	// Dates and keys are walked in sorted order so diagnostics come out
	// in a reproducible order run over run.
	dates := make([]models.Date, 0, len(holdings))
	for d := range holdings {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	for _, day := range dates {
		positions := holdings[day]
		income := make(models.PositionSet, len(positions))
		missingFunds := make(map[string]bool)

		for _, clientID := range positions.Clients() {
			funds := positions[clientID]
			fundIDs := make([]string, 0, len(funds))
			for f := range funds {
				fundIDs = append(fundIDs, f)
			}
			sort.Strings(fundIDs)

			salesperson := models.UnknownSalesperson
			if info, ok := clients[clientID]; ok {
				salesperson = info.Salesperson
			} else if !unrostered[clientID] {
				unrostered[clientID] = true
				result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
					Kind:   "client",
					Entity: clientID,
					Reason: models.ReasonMissingClient,
					Detail: "attributed to salesperson " + models.UnknownSalesperson,
				})
			}

			for _, fundID := range fundIDs {
				info, ok := products[fundID]
				if !ok {
					if !missingFunds[fundID] {
						missingFunds[fundID] = true
						result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
							Date:   day,
							Kind:   "fund",
							Entity: fundID,
							Reason: models.ReasonMissingProduct,
							Detail: "income treated as zero",
						})
					}
					continue
				}

				amount := RuleForFundType(info.FundType).DailyIncome(funds[fundID], info)
				income.Add(clientID, fundID, amount)
				result.Sales.Add(day, salesperson, amount)
				result.Clients.Add(day, clientID, amount)
				result.Funds.Add(day, fundID, amount)
			}
		}
		result.Income[day] = income
	}

	s.logger.Info("income attributed",
		zap.Int("days", len(result.Income)),
		zap.Int("diagnostics", len(result.Diagnostics)))

	return result, nil
}
