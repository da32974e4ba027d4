package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kpi-master/internal/models"
)

func TestRuleForFundType(t *testing.T) {
	assert.Equal(t, "fee_accrual_365", RuleForFundType(FundTypeEquity).Name())
	assert.Equal(t, "fee_accrual_365", RuleForFundType(FundTypeBalanced).Name())
	assert.Equal(t, "fee_accrual_360", RuleForFundType(FundTypeBond).Name())
	assert.Equal(t, "fee_accrual_360", RuleForFundType(FundTypeMoneyMarket).Name())
	assert.Equal(t, "fee_accrual_365", RuleForFundType("exotic").Name())
	assert.Equal(t, "fee_accrual_365", RuleForFundType("").Name())
}

// Golden values pin the income formula:
// income = position × (fee_rate + expense_ratio)/100 / basis.
func TestFeeAccrualGoldenValues(t *testing.T) {
	tests := []struct {
		name     string
		fundType string
		position string
		feeRate  string
		expense  string
		want     string
	}{
		{
			// 1000 × 2% / 365
			name:     "equity 365 basis",
			fundType: FundTypeEquity,
			position: "1000",
			feeRate:  "1.5",
			expense:  "0.5",
			want:     "0.0547945205479452",
		},
		{
			// 1000 × 1.5% / 360
			name:     "bond 360 basis",
			fundType: FundTypeBond,
			position: "1000",
			feeRate:  "1.2",
			expense:  "0.3",
			want:     "0.0416666666666667",
		},
		{
			// 36500 × 1% / 365 = exactly 1
			name:     "exact accrual",
			fundType: FundTypeEquity,
			position: "36500",
			feeRate:  "1",
			expense:  "0",
			want:     "1",
		},
		{
			// negative (short) position accrues negative income
			name:     "negative position",
			fundType: FundTypeEquity,
			position: "-36500",
			feeRate:  "1",
			expense:  "0",
			want:     "-1",
		},
		{
			name:     "zero position",
			fundType: FundTypeMoneyMarket,
			position: "0",
			feeRate:  "0.8",
			expense:  "0.1",
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &models.ProductInfo{
				FundID:       "F",
				FundType:     tt.fundType,
				FeeRate:      decimal.RequireFromString(tt.feeRate),
				ExpenseRatio: decimal.RequireFromString(tt.expense),
			}
			got := RuleForFundType(tt.fundType).DailyIncome(decimal.RequireFromString(tt.position), info)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s want %s", got, tt.want)
		})
	}
}
