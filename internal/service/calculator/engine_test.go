package calculator

import (
	"errors"
	"math"
	"testing"

	"prodplan/internal/model"
	"prodplan/internal/service/calendar"
)

// 2025 年 5 月：5 周，首周 28 Apr - 4 May，末周 26 May - 1 Jun
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	weeks := calendar.WeeksInMonth(4, 2025)
	e := NewEngine()
	e.Load(weeks, model.NewMonthDataset(weeks))
	return e
}

// loadSampleScenario pcw=160, piw=40，计划每周 200 吨
func loadSampleScenario(t *testing.T, e *Engine) {
	t.Helper()
	plannedDays := []float64{25, 50, 0, 0, 25, 50, 50}
	for i := range e.Weeks() {
		mustNoErr(t, e.SetRawMaterial(i, model.FieldPCW, 160))
		mustNoErr(t, e.SetRawMaterial(i, model.FieldPIW, 40))
		for d, day := range model.Days {
			mustNoErr(t, e.SetProductionDay(model.Planned, i, day, plannedDays[d]))
		}
	}
}

// TestEOWStock_SampleScenario 样例场景：库存每周减少 50
func TestEOWStock_SampleScenario(t *testing.T) {
	e := newTestEngine(t)
	loadSampleScenario(t, e)

	ds := e.Dataset()
	for i, row := range ds.RawMaterial {
		if !floatEquals(row.Total, 200) {
			t.Errorf("week %d total = %v, want 200", i, row.Total)
		}
		if !floatEquals(ds.PlannedProduction[i].Total, 200) {
			t.Errorf("week %d planned total = %v, want 200", i, ds.PlannedProduction[i].Total)
		}
		want := -50.0 * float64(i+1)
		if !floatEquals(row.EOWStock, want) {
			t.Errorf("week %d eowStock = %v, want %v", i, row.EOWStock, want)
		}
	}
}

// TestEOWStock_Recurrence 任意修改后递推公式都严格成立
func TestEOWStock_Recurrence(t *testing.T) {
	e := newTestEngine(t)
	mustNoErr(t, e.SetRawMaterial(0, model.FieldPCW, 120))
	mustNoErr(t, e.SetRawMaterial(2, model.FieldPIW, 33.5))
	mustNoErr(t, e.SetProductionDay(model.Planned, 1, model.Wednesday, 40))
	mustNoErr(t, e.SetProductionDay(model.Planned, 3, model.Sunday, 12.25))
	// 修改早期周，后续周需要全部重算
	mustNoErr(t, e.SetRawMaterial(0, model.FieldPIW, 7))

	ds := e.Dataset()
	previous := 0.0
	for i, row := range ds.RawMaterial {
		want := previous + row.Total - ds.PlannedProduction[i].Total/0.8
		if row.EOWStock != want {
			t.Fatalf("week %d eowStock = %v, want %v", i, row.EOWStock, want)
		}
		previous = row.EOWStock
	}
}

// TestActualProduction_DoesNotAffectStock 实际产量不影响库存
func TestActualProduction_DoesNotAffectStock(t *testing.T) {
	e := newTestEngine(t)
	mustNoErr(t, e.SetRawMaterial(0, model.FieldPCW, 100))
	before := e.Dataset().RawMaterial[0].EOWStock

	mustNoErr(t, e.SetProductionDay(model.Actual, 0, model.Monday, 80))

	ds := e.Dataset()
	if ds.RawMaterial[0].EOWStock != before {
		t.Fatalf("eowStock changed from %v to %v", before, ds.RawMaterial[0].EOWStock)
	}
	if !floatEquals(ds.ActualProduction[0].Total, 80) {
		t.Fatalf("actual total = %v, want 80", ds.ActualProduction[0].Total)
	}
}

// TestTotals_ExactSums 合计严格等于各字段之和
func TestTotals_ExactSums(t *testing.T) {
	e := newTestEngine(t)
	values := []float64{1.1, 2.2, 3.3, 4.4, 5.5, 6.6, 7.7}
	for d, day := range model.Days {
		mustNoErr(t, e.SetProductionDay(model.Actual, 2, day, values[d]))
	}
	mustNoErr(t, e.SetProductionDay(model.Actual, 2, model.Tuesday, 9))

	row := e.Dataset().ActualProduction[2]
	want := row.Monday + row.Tuesday + row.Wednesday + row.Thursday + row.Friday + row.Saturday + row.Sunday
	if row.Total != want {
		t.Fatalf("total = %v, want %v", row.Total, want)
	}
}

// TestSanitizeInputs 负数、NaN、无穷均视为 0
func TestSanitizeInputs(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name  string
		value float64
	}{
		{"负数", -5},
		{"NaN", math.NaN()},
		{"正无穷", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustNoErr(t, e.SetRawMaterial(1, model.FieldPCW, tt.value))
			if got := e.Dataset().RawMaterial[1].PCW; got != 0 {
				t.Errorf("pcw = %v, want 0", got)
			}
			mustNoErr(t, e.SetProductionDay(model.Planned, 1, model.Friday, tt.value))
			if got := e.Dataset().PlannedProduction[1].Friday; got != 0 {
				t.Errorf("friday = %v, want 0", got)
			}
		})
	}
}

// TestSplitPercent_AdjustmentRule 非对称调整规则
func TestSplitPercent_AdjustmentRule(t *testing.T) {
	tests := []struct {
		name                 string
		field                model.SplitField
		value                float64
		rp101, rp106, nonPP float64
	}{
		// 初始 65 / 29 / 6
		{"改 RP101 调整 NonPP", model.FieldRP101Percent, 60, 60, 29, 11},
		{"改 RP106 调整 NonPP", model.FieldRP106Percent, 30, 65, 30, 5},
		{"改 NonPP 调整 RP101", model.FieldNonPPPercent, 10, 61, 29, 10},
		{"超过 100 时截断", model.FieldNonPPPercent, 150, 0, 29, 100},
		{"负数视为 0", model.FieldRP106Percent, -3, 65, 0, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			mustNoErr(t, e.SetSplitPercent(model.Planned, 0, tt.field, tt.value))
			row := e.Dataset().PlannedSplit[0]
			if !floatEquals(row.RP101Percent, tt.rp101) || !floatEquals(row.RP106Percent, tt.rp106) || !floatEquals(row.NonPPPercent, tt.nonPP) {
				t.Errorf("got %v/%v/%v, want %v/%v/%v",
					row.RP101Percent, row.RP106Percent, row.NonPPPercent, tt.rp101, tt.rp106, tt.nonPP)
			}
		})
	}
}

// TestSplitPercent_SumsTo100 单次编辑后三者之和为 100
func TestSplitPercent_SumsTo100(t *testing.T) {
	e := newTestEngine(t)
	edits := []struct {
		field model.SplitField
		value float64
	}{
		{model.FieldRP101Percent, 70},
		{model.FieldRP106Percent, 20},
		{model.FieldNonPPPercent, 4.5},
		{model.FieldRP106Percent, 15},
	}
	for _, ed := range edits {
		mustNoErr(t, e.SetSplitPercent(model.Actual, 1, ed.field, ed.value))
		row := e.Dataset().ActualSplit[1]
		if sum := row.RP101Percent + row.RP106Percent + row.NonPPPercent; !floatEquals(sum, 100) {
			t.Fatalf("after %s=%v sum = %v", ed.field, ed.value, sum)
		}
	}
}

// TestSplitTons_UseMatchingSeries 计划分配用计划产量，实际分配用实际产量
func TestSplitTons_UseMatchingSeries(t *testing.T) {
	e := newTestEngine(t)
	mustNoErr(t, e.SetProductionDay(model.Planned, 0, model.Monday, 200))
	mustNoErr(t, e.SetProductionDay(model.Actual, 0, model.Monday, 100))
	mustNoErr(t, e.SetSplitPercent(model.Actual, 0, model.FieldRP101Percent, 75))
	mustNoErr(t, e.SetSplitPercent(model.Actual, 0, model.FieldRP106Percent, 20))

	ds := e.Dataset()
	planned := ds.PlannedSplit[0]
	if !floatEquals(planned.RP101Tons, 130) || !floatEquals(planned.RP106Tons, 58) || !floatEquals(planned.NonPPTons, 12) {
		t.Errorf("planned tons = %v/%v/%v", planned.RP101Tons, planned.RP106Tons, planned.NonPPTons)
	}
	actual := ds.ActualSplit[0]
	if !floatEquals(actual.RP101Tons, 75) || !floatEquals(actual.RP106Tons, 20) || !floatEquals(actual.NonPPTons, 5) {
		t.Errorf("actual tons = %v/%v/%v", actual.RP101Tons, actual.RP106Tons, actual.NonPPTons)
	}

	// 计划产量变化后计划分配吨数随之更新
	mustNoErr(t, e.SetProductionDay(model.Planned, 0, model.Tuesday, 100))
	planned = e.Dataset().PlannedSplit[0]
	if !floatEquals(planned.RP101Tons, 195) {
		t.Errorf("planned rp101Tons = %v, want 195", planned.RP101Tons)
	}
}

// TestMonthlyAggregates 合计与加权比例
func TestMonthlyAggregates(t *testing.T) {
	e := newTestEngine(t)
	loadSampleScenario(t, e)

	agg := e.MonthlyAggregates()
	weeks := float64(len(e.Weeks()))
	if !floatEquals(agg.RawMaterial.PCW, 160*weeks) || !floatEquals(agg.RawMaterial.Total, 200*weeks) {
		t.Errorf("raw totals = %+v", agg.RawMaterial)
	}
	if !floatEquals(agg.RawMaterial.EOWStock, -50*weeks) {
		t.Errorf("footer eowStock = %v", agg.RawMaterial.EOWStock)
	}
	if !floatEquals(agg.PlannedProduction.Tuesday, 50*weeks) || !floatEquals(agg.PlannedProduction.Total, 200*weeks) {
		t.Errorf("planned totals = %+v", agg.PlannedProduction)
	}
	if !floatEquals(agg.PlannedSplit.RP101Percent, 65) || !floatEquals(agg.PlannedSplit.RP106Percent, 29) || !floatEquals(agg.PlannedSplit.NonPPPercent, 6) {
		t.Errorf("planned split percents = %+v", agg.PlannedSplit)
	}
	if !floatEquals(agg.PlannedSplit.RP101Tons, 130*weeks) {
		t.Errorf("planned rp101Tons = %v", agg.PlannedSplit.RP101Tons)
	}
}

// TestMonthlyAggregates_ZeroTons 总吨数为 0 时比例为 0 而非 NaN
func TestMonthlyAggregates_ZeroTons(t *testing.T) {
	e := newTestEngine(t)
	agg := e.MonthlyAggregates()
	for _, v := range []float64{
		agg.PlannedSplit.RP101Percent, agg.PlannedSplit.RP106Percent, agg.PlannedSplit.NonPPPercent,
		agg.ActualSplit.RP101Percent, agg.ActualSplit.RP106Percent, agg.ActualSplit.NonPPPercent,
	} {
		if math.IsNaN(v) || v != 0 {
			t.Fatalf("weighted percent = %v, want 0", v)
		}
	}
}

// TestWeightedSplitPercent 不同周产量下按吨数加权
func TestWeightedSplitPercent(t *testing.T) {
	e := newTestEngine(t)
	mustNoErr(t, e.SetProductionDay(model.Actual, 0, model.Monday, 100))
	mustNoErr(t, e.SetProductionDay(model.Actual, 1, model.Monday, 300))
	mustNoErr(t, e.SetSplitPercent(model.Actual, 0, model.FieldRP101Percent, 100)) // 100/0/0
	mustNoErr(t, e.SetSplitPercent(model.Actual, 1, model.FieldRP106Percent, 100)) // 0/100/0

	agg := e.MonthlyAggregates()
	if !floatEquals(agg.ActualSplit.RP101Percent, 25) || !floatEquals(agg.ActualSplit.RP106Percent, 75) {
		t.Fatalf("weighted = %v/%v, want 25/75", agg.ActualSplit.RP101Percent, agg.ActualSplit.RP106Percent)
	}
}

// TestChartData_ExcludesAdjacentMonthDays 跨月周中其他月份的日期不进入图表
func TestChartData_ExcludesAdjacentMonthDays(t *testing.T) {
	e := newTestEngine(t)
	// 首周 28 Apr - 4 May：周一 (28 Apr) 不属于 5 月，周四是 1 May
	mustNoErr(t, e.SetProductionDay(model.Planned, 0, model.Monday, 11))
	mustNoErr(t, e.SetProductionDay(model.Planned, 0, model.Thursday, 22))
	// 末周 26 May - 1 Jun：周日是 1 Jun
	mustNoErr(t, e.SetProductionDay(model.Actual, 4, model.Saturday, 33))
	mustNoErr(t, e.SetProductionDay(model.Actual, 4, model.Sunday, 44))

	chart := e.ChartData(4, 2025)
	if len(chart.Labels) != 31 || chart.Labels[0] != 1 || chart.Labels[30] != 31 {
		t.Fatalf("labels = %v", chart.Labels)
	}
	if chart.Planned[0] != 22 {
		t.Errorf("planned[1 May] = %v, want 22", chart.Planned[0])
	}
	for _, v := range chart.Planned {
		if v == 11 {
			t.Errorf("28 Apr value leaked into chart")
		}
	}
	if chart.Actual[30] != 33 {
		t.Errorf("actual[31 May] = %v, want 33", chart.Actual[30])
	}
	for _, v := range chart.Actual {
		if v == 44 {
			t.Errorf("1 Jun value leaked into chart")
		}
	}
}

// TestEdit_Errors 非法下标与字段
func TestEdit_Errors(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetRawMaterial(5, model.FieldPCW, 1); !errors.Is(err, ErrWeekOutOfRange) {
		t.Errorf("week 5: err = %v", err)
	}
	if err := e.SetRawMaterial(-1, model.FieldPCW, 1); !errors.Is(err, ErrWeekOutOfRange) {
		t.Errorf("week -1: err = %v", err)
	}
	if err := e.SetRawMaterial(0, "total", 1); !errors.Is(err, ErrUnknownField) {
		t.Errorf("raw total: err = %v", err)
	}
	if err := e.SetProductionDay(model.Planned, 0, "funday", 1); !errors.Is(err, ErrUnknownField) {
		t.Errorf("unknown day: err = %v", err)
	}
	if err := e.SetSplitPercent(model.Actual, 0, "rp101Tons", 1); !errors.Is(err, ErrUnknownField) {
		t.Errorf("split tons: err = %v", err)
	}
}

// TestLoad_NormalizesLength 数据集长度不足时补齐
func TestLoad_NormalizesLength(t *testing.T) {
	weeks := calendar.WeeksInMonth(4, 2025)
	short := model.NewMonthDataset(weeks[:2])
	short.RawMaterial[1].PCW = 10

	e := NewEngine()
	e.Load(weeks, short)

	ds := e.Dataset()
	if ds.Len() != len(weeks) {
		t.Fatalf("len = %d, want %d", ds.Len(), len(weeks))
	}
	if ds.RawMaterial[1].PCW != 10 || ds.RawMaterial[1].Total != 10 {
		t.Errorf("week 1 = %+v", ds.RawMaterial[1])
	}
	if ds.RawMaterial[4].Week != weeks[4].Label {
		t.Errorf("padded week label = %q", ds.RawMaterial[4].Week)
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// floatEquals 浮点数近似相等判断
func floatEquals(a, b float64) bool {
	const epsilon = 1e-9
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}
