package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnknownSalesperson is the sentinel used for clients that have no row in
// the client roster. They are attributed here instead of failing the run.
const UnknownSalesperson = "Unknown"

// PositionSet maps client → fund → value for a single day. The same shape
// carries position values in DailyHoldings and income values in
// DailyIncome. Absent cells read as zero.
type PositionSet map[string]map[string]decimal.Decimal

// Get returns the cell value, or zero when the cell is absent.
func (p PositionSet) Get(clientID, fundID string) decimal.Decimal {
	if funds, ok := p[clientID]; ok {
		if v, ok := funds[fundID]; ok {
			return v
		}
	}
	return decimal.Zero
}

// Add applies a signed delta to a cell, creating it at zero first when it
// does not exist yet.
func (p PositionSet) Add(clientID, fundID string, delta decimal.Decimal) {
	funds, ok := p[clientID]
	if !ok {
		funds = make(map[string]decimal.Decimal)
		p[clientID] = funds
	}
	funds[fundID] = funds[fundID].Add(delta)
}

// Clone returns a deep copy.
func (p PositionSet) Clone() PositionSet {
	out := make(PositionSet, len(p))
	for client, funds := range p {
		cp := make(map[string]decimal.Decimal, len(funds))
		for fund, v := range funds {
			cp[fund] = v
		}
		out[client] = cp
	}
	return out
}

// Total sums every cell.
func (p PositionSet) Total() decimal.Decimal {
	total := decimal.Zero
	for _, funds := range p {
		for _, v := range funds {
			total = total.Add(v)
		}
	}
	return total
}

// Clients returns the client IDs present, sorted.
func (p PositionSet) Clients() []string {
	keys := make([]string, 0, len(p))
	for c := range p {
		keys = append(keys, c)
	}
	sort.Strings(keys)
	return keys
}

// DailyHoldings maps each day of the period to the book's positions.
type DailyHoldings map[Date]PositionSet

// DailyIncome maps each day to attributed income per client and fund.
type DailyIncome map[Date]PositionSet

// SeriesByKey maps day → entity → value. It carries the by-salesperson,
// by-client and by-fund rollups as well as their cumulative variants.
type SeriesByKey map[Date]map[string]decimal.Decimal

// Add applies a delta to one entity's value on one day.
func (s SeriesByKey) Add(day Date, key string, delta decimal.Decimal) {
	vals, ok := s[day]
	if !ok {
		vals = make(map[string]decimal.Decimal)
		s[day] = vals
	}
	vals[key] = vals[key].Add(delta)
}

// Dates returns the days present, sorted.
func (s SeriesByKey) Dates() []Date {
	dates := make([]Date, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// DayTotal sums all entities on one day.
func (s SeriesByKey) DayTotal(day Date) decimal.Decimal {
	total := decimal.Zero
	for _, v := range s[day] {
		total = total.Add(v)
	}
	return total
}

// RankedEntry is one row of a top-N list.
type RankedEntry struct {
	Key    string          `json:"key"`
	Income decimal.Decimal `json:"income"`
}

// SalespersonSlice is one salesperson's income for one day, split by
// contributing client and fund.
type SalespersonSlice struct {
	Total   decimal.Decimal            `json:"total"`
	Clients map[string]decimal.Decimal `json:"clients"`
	Funds   map[string]decimal.Decimal `json:"funds"`
}

// ClientSlice is one client's income for one day split by fund.
type ClientSlice struct {
	Total decimal.Decimal            `json:"total"`
	Funds map[string]decimal.Decimal `json:"funds"`
}

// SalespersonBreakdown maps day → salesperson → slice.
type SalespersonBreakdown map[Date]map[string]*SalespersonSlice

// ClientBreakdown maps day → client → slice.
type ClientBreakdown map[Date]map[string]*ClientSlice

// EntityStats summarizes one entity's daily income across the whole
// period. Days where the entity earned nothing count as zero.
type EntityStats struct {
	Total   decimal.Decimal `json:"total"`
	Mean    decimal.Decimal `json:"mean"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	MinDate Date            `json:"min_date"`
	MaxDate Date            `json:"max_date"`
}

// StatisticsReport is the descriptive rollup served by /api/statistics.
type StatisticsReport struct {
	ByClient      map[string]*EntityStats `json:"by_client"`
	ByFund        map[string]*EntityStats `json:"by_fund"`
	BySalesperson map[string]*EntityStats `json:"by_sales_person"`
}

// DashboardSummary is the headline view: book-wide total income and the
// top earner on each axis.
type DashboardSummary struct {
	TotalIncome    decimal.Decimal `json:"total_income"`
	TopSalesperson string          `json:"top_sales_person"`
	TopClient      string          `json:"top_client"`
	TopFund        string          `json:"top_fund"`
}

// ForecastPoint is one projected day. Simple holds the moving-average
// projection, Trend the fitted-line projection.
type ForecastPoint struct {
	Date   Date            `json:"date"`
	Simple decimal.Decimal `json:"simple_forecast"`
	Trend  decimal.Decimal `json:"complex_forecast"`
}

// ForecastReport is the fixed-horizon projection of total daily income.
type ForecastReport struct {
	AsOf       Date            `json:"as_of"`
	WindowDays int             `json:"window_days"`
	Points     []ForecastPoint `json:"points"`
}

// Snapshot is the complete derived result set of one pipeline run. It is
// immutable once published; a refresh computes a fresh Snapshot and swaps
// the store pointer, so readers always see one consistent result set.
type Snapshot struct {
	Period            Period               `json:"period"`
	Holdings          DailyHoldings        `json:"holdings"`
	Income            DailyIncome          `json:"income"`
	SalesIncome       SeriesByKey          `json:"sales_income"`
	ClientIncome      SeriesByKey          `json:"client_income"`
	FundIncome        SeriesByKey          `json:"fund_income"`
	CumulativeSales   SeriesByKey          `json:"cumulative_sales"`
	CumulativeClients SeriesByKey          `json:"cumulative_clients"`
	Statistics        *StatisticsReport    `json:"statistics"`
	Dashboard         *DashboardSummary    `json:"dashboard"`
	Forecast          *ForecastReport      `json:"forecast"`
	SalesBreakdown    SalespersonBreakdown `json:"sales_breakdown"`
	ClientSplit       ClientBreakdown      `json:"client_breakdown"`
	Diagnostics       []Diagnostic         `json:"diagnostics"`
}
