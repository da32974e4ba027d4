package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kpi-master/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProjectSingleTrade(t *testing.T) {
	svc := NewProjectionService(zap.NewNop())

	holdings := []*models.Holding{
		{ClientID: "A", FundID: "X", Value: dec("1000")},
	}
	trades := []*models.Trade{
		{ClientID: "A", FundID: "X", Date: "2023-01-02", Amount: dec("500")},
	}
	period := models.Period{Start: "2023-01-01", End: "2023-01-03"}

	daily, diags, err := svc.Project(context.Background(), holdings, trades, period)
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(daily) != 3 {
		t.Fatalf("expected 3 days, got %d", len(daily))
	}

	want := map[models.Date]string{
		"2023-01-01": "1000",
		"2023-01-02": "1500",
		"2023-01-03": "1500",
	}
	for day, value := range want {
		if got := daily[day].Get("A", "X"); !got.Equal(dec(value)) {
			t.Fatalf("day %s: got %s want %s", day, got, value)
		}
	}
}

func TestProjectConservation(t *testing.T) {
	svc := NewProjectionService(zap.NewNop())

	holdings := []*models.Holding{
		{ClientID: "A", FundID: "X", Value: dec("1000")},
		{ClientID: "B", FundID: "Y", Value: dec("300")},
	}
	trades := []*models.Trade{
		{ClientID: "A", FundID: "X", Date: "2023-01-02", Amount: dec("500")},
		{ClientID: "A", FundID: "X", Date: "2023-01-02", Amount: dec("-200")},
		{ClientID: "B", FundID: "Y", Date: "2023-01-04", Amount: dec("-300")},
		{ClientID: "C", FundID: "Z", Date: "2023-01-03", Amount: dec("750.25")},
	}
	period := models.Period{Start: "2023-01-01", End: "2023-01-05"}

	daily, _, err := svc.Project(context.Background(), holdings, trades, period)
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}

	// Same-day trades combine into one delta.
	if got := daily["2023-01-02"].Get("A", "X"); !got.Equal(dec("1300")) {
		t.Fatalf("A/X on day 2: got %s want 1300", got)
	}
	// A position traded to zero stays visible at zero.
	if got := daily["2023-01-05"].Get("B", "Y"); !got.IsZero() {
		t.Fatalf("B/Y at end: got %s want 0", got)
	}
	// A client absent from the opening snapshot starts at zero.
	if got := daily["2023-01-02"].Get("C", "Z"); !got.IsZero() {
		t.Fatalf("C/Z before first trade: got %s want 0", got)
	}
	if got := daily["2023-01-03"].Get("C", "Z"); !got.Equal(dec("750.25")) {
		t.Fatalf("C/Z after first trade: got %s want 750.25", got)
	}

	// Conservation: every day equals the previous day plus that day's deltas.
	days := period.Days()
	for i := 1; i < len(days); i++ {
		deltas := make(models.PositionSet)
		for _, tr := range trades {
			if tr.Date == days[i] {
				deltas.Add(tr.ClientID, tr.FundID, tr.Amount)
			}
		}
		for client, funds := range daily[days[i]] {
			for fund, v := range funds {
				expect := daily[days[i-1]].Get(client, fund).Add(deltas.Get(client, fund))
				if !v.Equal(expect) {
					t.Fatalf("conservation broken at %s %s/%s: got %s want %s", days[i], client, fund, v, expect)
				}
			}
		}
	}
}

func TestProjectIgnoresOutOfRangeTrades(t *testing.T) {
	svc := NewProjectionService(zap.NewNop())

	holdings := []*models.Holding{{ClientID: "A", FundID: "X", Value: dec("100")}}
	trades := []*models.Trade{
		{ClientID: "A", FundID: "X", Date: "2022-12-31", Amount: dec("999")},
		{ClientID: "A", FundID: "X", Date: "2023-01-01", Amount: dec("50")},
		{ClientID: "A", FundID: "X", Date: "2023-01-04", Amount: dec("999")},
	}
	period := models.Period{Start: "2023-01-01", End: "2023-01-03"}

	daily, diags, err := svc.Project(context.Background(), holdings, trades, period)
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}

	// The pre-period and post-period trades are ignored; the start-date
	// trade is treated as already in the opening snapshot.
	if got := daily["2023-01-01"].Get("A", "X"); !got.Equal(dec("100")) {
		t.Fatalf("start day: got %s want 100", got)
	}
	if got := daily["2023-01-03"].Get("A", "X"); !got.Equal(dec("100")) {
		t.Fatalf("end day: got %s want 100", got)
	}
	if len(diags) != 3 {
		t.Fatalf("expected 3 ignored-trade diagnostics, got %d", len(diags))
	}
	for _, d := range diags {
		if d.Reason != models.ReasonOutOfRange {
			t.Fatalf("unexpected reason %q", d.Reason)
		}
	}
}

func TestProjectRejectsInvertedPeriod(t *testing.T) {
	svc := NewProjectionService(zap.NewNop())
	_, _, err := svc.Project(context.Background(), nil, nil, models.Period{Start: "2023-02-01", End: "2023-01-01"})
	if err == nil {
		t.Fatal("expected error for inverted period")
	}
}
