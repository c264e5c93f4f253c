package planner

import (
	"testing"

	"prodplan/internal/model"
	"prodplan/internal/service/calculator"
	"prodplan/internal/service/calendar"
)

func TestFixed(t *testing.T) {
	tests := []struct {
		v      float64
		places int32
		want   string
	}{
		{0, 1, "0.0"},
		{67.2, 1, "67.2"},
		{-250, 1, "-250.0"},
		{43.68, 2, "43.68"},
		{1.005, 2, "1.00"},
		{0.125, 2, "0.13"},
		{-0.125, 2, "-0.13"},
		{1.45, 1, "1.4"},
		{2.25, 1, "2.3"},
	}
	for _, tt := range tests {
		if got := fixed(tt.v, tt.places); got != tt.want {
			t.Errorf("fixed(%v, %d) = %q, want %q", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestBuildView_Footer(t *testing.T) {
	weeks := calendar.WeeksInMonth(4, 2025)
	scenario, err := DefaultScenario()
	if err != nil {
		t.Fatalf("DefaultScenario: %v", err)
	}
	e := calculator.NewEngine()
	e.Load(weeks, scenario.Apply(model.NewMonthDataset(weeks)))

	view := BuildView(2025, 4, e.Weeks(), e.Dataset(), e.MonthlyAggregates(), e.ChartData(4, 2025))

	want := map[string]string{
		"pcw-total":             "800.0",
		"piw-total":             "200.0",
		"raw-total":             "1000.0",
		"eow-stock":             "-250.0",
		"planned-m-total":       "125.0",
		"planned-total":         "1000.0",
		"monthly-planned-total": "1000.0",
		"actual-m-total":        "36.3",
		"actual-t-total":        "30.9",
		"actual-total":          "67.2",
		"planned-rp101-percent": "65.0%",
		"planned-nonPP-percent": "6.0%",
		"planned-rp101-total":   "650.00",
		"actual-rp101-percent":  "75.0%",
		"actual-rp101-total":    "50.40",
	}
	for k, v := range want {
		if got := view.Footer[k]; got != v {
			t.Errorf("footer[%s] = %q, want %q", k, got, v)
		}
	}

	if view.RawMaterial[0].EOWStockText != "-50.0" {
		t.Errorf("week 0 eow text = %q", view.RawMaterial[0].EOWStockText)
	}
	if view.PlannedSplit[0].RP106TonsText != "58.00" {
		t.Errorf("week 0 rp106 text = %q", view.PlannedSplit[0].RP106TonsText)
	}
	if len(view.Chart.Labels) != 31 || view.Chart.Labels[30] != 31 {
		t.Errorf("chart labels = %v", view.Chart.Labels)
	}
}

func TestBuildView_ZeroSplitPercents(t *testing.T) {
	weeks := calendar.WeeksInMonth(1, 2026)
	e := calculator.NewEngine()
	e.Load(weeks, model.NewMonthDataset(weeks))

	view := BuildView(2026, 1, e.Weeks(), e.Dataset(), e.MonthlyAggregates(), e.ChartData(1, 2026))
	for _, k := range []string{"planned-rp101-percent", "actual-nonPP-percent"} {
		if view.Footer[k] != "0.0%" {
			t.Errorf("footer[%s] = %q, want 0.0%%", k, view.Footer[k])
		}
	}
	if view.MonthName != "February" || len(view.Chart.Actual) != 28 {
		t.Errorf("month %s chart len %d", view.MonthName, len(view.Chart.Actual))
	}
}
