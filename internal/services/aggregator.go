package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"kpi-master/internal/models"
)

// Cumulative turns a daily series into running sums per key in date order.
// Once a key appears it is carried forward on every later date, so the
// cumulative value on day D is the sum of all daily values up to and
// including D. Daily income may be negative, so this is a true running
// sum, not a monotone counter.
func Cumulative(series models.SeriesByKey) models.SeriesByKey {
	out := make(models.SeriesByKey, len(series))
	totals := make(map[string]decimal.Decimal)

	for _, day := range series.Dates() {
		for key, v := range series[day] {
			totals[key] = totals[key].Add(v)
		}
		snapshot := make(map[string]decimal.Decimal, len(totals))
		for key, v := range totals {
			snapshot[key] = v
		}
		out[day] = snapshot
	}
	return out
}

// BuildStatistics produces min/max/mean/total summaries per client, fund
// and salesperson over the whole period. Days on which an entity earned
// nothing count as zero, so an entity appearing mid-period still averages
// over every day.
func BuildStatistics(sales, clients, funds models.SeriesByKey, period models.Period) *models.StatisticsReport {
	days := period.Days()
	return &models.StatisticsReport{
		ByClient:      entityStats(clients, days),
		ByFund:        entityStats(funds, days),
		BySalesperson: entityStats(sales, days),
	}
}

func entityStats(series models.SeriesByKey, days []models.Date) map[string]*models.EntityStats {
	keys := make(map[string]bool)
	for _, vals := range series {
		for k := range vals {
			keys[k] = true
		}
	}

	out := make(map[string]*models.EntityStats, len(keys))
	if len(days) == 0 {
		return out
	}
	numDays := decimal.NewFromInt(int64(len(days)))

	for key := range keys {
		stats := &models.EntityStats{}
		first := true
		for _, day := range days {
			v := decimal.Zero
			if vals, ok := series[day]; ok {
				v = vals[key]
			}
			stats.Total = stats.Total.Add(v)
			if first || v.LessThan(stats.Min) {
				stats.Min = v
				stats.MinDate = day
			}
			if first || v.GreaterThan(stats.Max) {
				stats.Max = v
				stats.MaxDate = day
			}
			first = false
		}
		stats.Mean = stats.Total.Div(numDays)
		out[key] = stats
	}
	return out
}

// BuildDashboard computes the headline summary: total income over the
// period and the top-earning salesperson, client and fund. Ties break on
// the lexicographically smallest key so output is byte-stable.
func BuildDashboard(sales, clients, funds models.SeriesByKey) *models.DashboardSummary {
	total := decimal.Zero
	for _, day := range clients.Dates() {
		total = total.Add(clients.DayTotal(day))
	}
	return &models.DashboardSummary{
		TotalIncome:    total,
		TopSalesperson: topKey(sales),
		TopClient:      topKey(clients),
		TopFund:        topKey(funds),
	}
}

func topKey(series models.SeriesByKey) string {
	totals := make(map[string]decimal.Decimal)
	for _, vals := range series {
		for k, v := range vals {
			totals[k] = totals[k].Add(v)
		}
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	top := ""
	var best decimal.Decimal
	for _, k := range keys {
		if top == "" || totals[k].GreaterThan(best) {
			top = k
			best = totals[k]
		}
	}
	return top
}
