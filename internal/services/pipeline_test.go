package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"kpi-master/internal/models"
)

func pipelineDataset() *models.Dataset {
	return &models.Dataset{
		Holdings: []*models.Holding{
			{ClientID: "A", FundID: "X", Value: dec("36500")},
			{ClientID: "C", FundID: "Y", Value: dec("3600")},
		},
		Trades: []*models.Trade{
			{ClientID: "B", FundID: "X", Date: "2023-01-02", Amount: dec("7300")},
			{ClientID: "A", FundID: "UNPRICED", Date: "2023-01-02", Amount: dec("500")},
			{ClientID: "A", FundID: "X", Date: "2024-06-01", Amount: dec("999")},
		},
		Products: map[string]*models.ProductInfo{
			"X": {FundID: "X", FundType: FundTypeEquity, FeeRate: dec("1"), ExpenseRatio: dec("0")},
			"Y": {FundID: "Y", FundType: FundTypeBond, FeeRate: dec("0.5"), ExpenseRatio: dec("0.1")},
		},
		Clients: map[string]*models.ClientInfo{
			"A": {ClientID: "A", Salesperson: "Alice", Province: "ON"},
			"C": {ClientID: "C", Salesperson: "Bob", Province: "BC"},
		},
	}
}

func TestPipelineRun(t *testing.T) {
	p := NewPipeline(zap.NewNop())
	period := models.Period{Start: "2023-01-01", End: "2023-01-03"}

	snap, err := p.Run(context.Background(), pipelineDataset(), period, 30, 30, nil)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	// Date completeness on both day-keyed structures.
	for _, day := range period.Days() {
		if _, ok := snap.Holdings[day]; !ok {
			t.Fatalf("holdings missing day %s", day)
		}
		if _, ok := snap.Income[day]; !ok {
			t.Fatalf("income missing day %s", day)
		}
	}

	// Rollup consistency across the three axes.
	for day := range snap.Income {
		total := snap.Income[day].Total()
		if got := snap.SalesIncome.DayTotal(day); !got.Equal(total) {
			t.Fatalf("day %s: sales rollup %s != %s", day, got, total)
		}
		if got := snap.ClientIncome.DayTotal(day); !got.Equal(total) {
			t.Fatalf("day %s: client rollup %s != %s", day, got, total)
		}
	}

	// Breakdown/rollup agreement.
	for day, bySales := range snap.SalesBreakdown {
		for name, slice := range bySales {
			if !slice.Total.Equal(snap.SalesIncome[day][name]) {
				t.Fatalf("day %s %s: breakdown %s != rollup %s", day, name, slice.Total, snap.SalesIncome[day][name])
			}
		}
	}

	// Cumulative correctness on the final day.
	last := period.End
	for key := range snap.CumulativeSales[last] {
		sum := dec("0")
		for day := range snap.SalesIncome {
			if !day.After(last) {
				sum = sum.Add(snap.SalesIncome[day][key])
			}
		}
		if !snap.CumulativeSales[last][key].Equal(sum) {
			t.Fatalf("cumulative for %s: got %s want %s", key, snap.CumulativeSales[last][key], sum)
		}
	}

	// B came in through a trade and has no roster row.
	if _, ok := snap.SalesIncome["2023-01-02"][models.UnknownSalesperson]; !ok {
		t.Fatal("expected Unknown salesperson in sales rollup")
	}

	// The unpriced fund and the out-of-range trade show up as diagnostics.
	var missingProduct, outOfRange bool
	for _, d := range snap.Diagnostics {
		switch d.Reason {
		case models.ReasonMissingProduct:
			missingProduct = true
		case models.ReasonOutOfRange:
			outOfRange = true
		}
	}
	if !missingProduct || !outOfRange {
		t.Fatalf("expected missing-product and out-of-range diagnostics, got %+v", snap.Diagnostics)
	}

	if snap.Forecast == nil || len(snap.Forecast.Points) != 30 {
		t.Fatal("expected a 30-day forecast")
	}
	if snap.Dashboard.TopSalesperson != "Alice" {
		t.Fatalf("top salesperson: got %q want Alice", snap.Dashboard.TopSalesperson)
	}
}

// Re-running the pipeline on unchanged inputs must produce byte-identical
// output. encoding/json sorts map keys, so marshaling the snapshots is a
// faithful equality check.
func TestPipelineIdempotent(t *testing.T) {
	p := NewPipeline(zap.NewNop())
	period := models.Period{Start: "2023-01-01", End: "2023-01-05"}

	first, err := p.Run(context.Background(), pipelineDataset(), period, 30, 30, nil)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	second, err := p.Run(context.Background(), pipelineDataset(), period, 30, 30, nil)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("pipeline output not byte-identical across runs")
	}
}

func TestPipelinePropagatesProjectionError(t *testing.T) {
	p := NewPipeline(zap.NewNop())
	_, err := p.Run(context.Background(), pipelineDataset(), models.Period{Start: "2023-02-01", End: "2023-01-01"}, 30, 30, nil)
	if err == nil {
		t.Fatal("expected error for inverted period")
	}
}
