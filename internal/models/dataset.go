package models

import (
	"github.com/shopspring/decimal"
)

// Holding is a client's opening position value in a fund as of the cutoff
// date that starts the reporting period.
type Holding struct {
	ClientID string          `json:"client_id"`
	FundID   string          `json:"fund_id"`
	Value    decimal.Decimal `json:"value"`
}

// Trade is a dated signed change to a client's position in a fund.
type Trade struct {
	ClientID string          `json:"client_id"`
	FundID   string          `json:"fund_id"`
	Date     Date            `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
}

// ProductInfo describes a fund's valuation attributes. FeeRate and
// ExpenseRatio are annual percentages.
type ProductInfo struct {
	FundID       string          `json:"fund_id"`
	Name         string          `json:"name"`
	FundType     string          `json:"fund_type"`
	Price        decimal.Decimal `json:"price"`
	FeeRate      decimal.Decimal `json:"fee_rate"`
	ExpenseRatio decimal.Decimal `json:"expense_ratio"`
}

// ClientInfo is one row of the client roster.
type ClientInfo struct {
	ClientID    string `json:"client_id"`
	Salesperson string `json:"sales_person"`
	Province    string `json:"province"`
}

// Dataset holds the four input tables after loading. Products and Clients
// are keyed by their natural IDs for join lookups during attribution.
type Dataset struct {
	Holdings []*Holding
	Trades   []*Trade
	Products map[string]*ProductInfo
	Clients  map[string]*ClientInfo
}
