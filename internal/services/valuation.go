package services

import (
	"github.com/shopspring/decimal"

	"kpi-master/internal/models"
)

// ValuationRule converts one day's position value into the income the book
// earns on it. Rules are selected per fund type so product families with
// different conventions can override the formula.
type ValuationRule interface {
	Name() string
	DailyIncome(position decimal.Decimal, info *models.ProductInfo) decimal.Decimal
}

var (
	hundred = decimal.NewFromInt(100)
)

// feeAccrualRule accrues the fund's annual fee revenue day by day:
//
//	income = position × (fee_rate + expense_ratio) / 100 / basis
//
// where basis is the fund family's day-count convention.
type feeAccrualRule struct {
	name  string
	basis decimal.Decimal
}

func (r *feeAccrualRule) Name() string { return r.name }

func (r *feeAccrualRule) DailyIncome(position decimal.Decimal, info *models.ProductInfo) decimal.Decimal {
	annualRate := info.FeeRate.Add(info.ExpenseRatio).Div(hundred)
	return position.Mul(annualRate).Div(r.basis)
}

// Fund types recognized by the default rule set. Equity and balanced funds
// accrue on a 365-day basis; bond and money-market funds use the 360-day
// money-market convention.
const (
	FundTypeEquity      = "equity"
	FundTypeBalanced    = "balanced"
	FundTypeBond        = "bond"
	FundTypeMoneyMarket = "money_market"
)

var (
	basis365 = decimal.NewFromInt(365)
	basis360 = decimal.NewFromInt(360)

	defaultRule ValuationRule = &feeAccrualRule{name: "fee_accrual_365", basis: basis365}

	valuationRules = map[string]ValuationRule{
		FundTypeEquity:      defaultRule,
		FundTypeBalanced:    defaultRule,
		FundTypeBond:        &feeAccrualRule{name: "fee_accrual_360", basis: basis360},
		FundTypeMoneyMarket: &feeAccrualRule{name: "fee_accrual_360", basis: basis360},
	}
)

// RuleForFundType returns the valuation rule for a fund type, falling back
// to the 365-day fee accrual for unrecognized types.
func RuleForFundType(fundType string) ValuationRule {
	if rule, ok := valuationRules[fundType]; ok {
		return rule
	}
	return defaultRule
}
