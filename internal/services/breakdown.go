package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"kpi-master/internal/models"
)

// SalespersonSplit re-indexes daily income by salesperson, splitting each
// salesperson's total into contributing clients and funds. Totals agree
// exactly with the SalesIncome rollup for every (date, salesperson).
func SalespersonSplit(income models.DailyIncome, clients map[string]*models.ClientInfo) models.SalespersonBreakdown {
	out := make(models.SalespersonBreakdown, len(income))
	for day, positions := range income {
		bySales := make(map[string]*models.SalespersonSlice)
		for clientID, funds := range positions {
			salesperson := models.UnknownSalesperson
			if info, ok := clients[clientID]; ok {
				salesperson = info.Salesperson
			}
			slice, ok := bySales[salesperson]
			if !ok {
				slice = &models.SalespersonSlice{
					Clients: make(map[string]decimal.Decimal),
					Funds:   make(map[string]decimal.Decimal),
				}
				bySales[salesperson] = slice
			}
			for fundID, amount := range funds {
				slice.Total = slice.Total.Add(amount)
				slice.Clients[clientID] = slice.Clients[clientID].Add(amount)
				slice.Funds[fundID] = slice.Funds[fundID].Add(amount)
			}
		}
		out[day] = bySales
	}
	return out
}

// ClientSplit re-indexes daily income by client with per-fund composition.
// Totals agree exactly with the ClientIncome rollup.
func ClientSplit(income models.DailyIncome) models.ClientBreakdown {
	out := make(models.ClientBreakdown, len(income))
	for day, positions := range income {
		byClient := make(map[string]*models.ClientSlice, len(positions))
		for clientID, funds := range positions {
			slice := &models.ClientSlice{Funds: make(map[string]decimal.Decimal, len(funds))}
			for fundID, amount := range funds {
				slice.Total = slice.Total.Add(amount)
				slice.Funds[fundID] = slice.Funds[fundID].Add(amount)
			}
			byClient[clientID] = slice
		}
		out[day] = byClient
	}
	return out
}

// TopEntries ranks a composition map by income, highest first, and keeps
// at most n rows. Equal incomes order by key so the ranking is stable.
func TopEntries(values map[string]decimal.Decimal, n int) []models.RankedEntry {
	entries := make([]models.RankedEntry, 0, len(values))
	for key, v := range values {
		entries = append(entries, models.RankedEntry{Key: key, Income: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Income.Equal(entries[j].Income) {
			return entries[i].Income.GreaterThan(entries[j].Income)
		}
		return entries[i].Key < entries[j].Key
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
