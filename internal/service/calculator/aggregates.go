package calculator

import (
	"prodplan/internal/model"
	"prodplan/internal/service/calendar"
)

// MonthlyAggregates 计算当月各表合计
func (e *Engine) MonthlyAggregates() model.Aggregates {
	return Aggregate(e.data)
}

// Aggregate 对数据集做汇总（纯函数）
func Aggregate(data model.MonthDataset) model.Aggregates {
	var agg model.Aggregates

	for _, r := range data.RawMaterial {
		agg.RawMaterial.PCW += r.PCW
		agg.RawMaterial.PIW += r.PIW
		agg.RawMaterial.Total += r.Total
	}
	if n := len(data.RawMaterial); n > 0 {
		agg.RawMaterial.EOWStock = data.RawMaterial[n-1].EOWStock
	}

	agg.PlannedProduction = sumProduction(data.PlannedProduction)
	agg.ActualProduction = sumProduction(data.ActualProduction)
	agg.PlannedSplit = sumSplits(data.PlannedSplit)
	agg.ActualSplit = sumSplits(data.ActualSplit)
	return agg
}

func sumProduction(rows []model.ProductionRow) model.ProductionTotals {
	var t model.ProductionTotals
	for _, r := range rows {
		t.Monday += r.Monday
		t.Tuesday += r.Tuesday
		t.Wednesday += r.Wednesday
		t.Thursday += r.Thursday
		t.Friday += r.Friday
		t.Saturday += r.Saturday
		t.Sunday += r.Sunday
		t.Total += r.Total
	}
	return t
}

func sumSplits(rows []model.SplitRow) model.SplitTotals {
	var t model.SplitTotals
	for _, r := range rows {
		t.RP101Tons += r.RP101Tons
		t.RP106Tons += r.RP106Tons
		t.NonPPTons += r.NonPPTons
	}
	all := t.RP101Tons + t.RP106Tons + t.NonPPTons
	t.RP101Percent = weightedPercent(t.RP101Tons, all)
	t.RP106Percent = weightedPercent(t.RP106Tons, all)
	t.NonPPPercent = weightedPercent(t.NonPPTons, all)
	return t
}

// weightedPercent 总吨数为 0 时返回 0，避免 NaN
func weightedPercent(part, all float64) float64 {
	if all <= 0 {
		return 0
	}
	return part / all * 100
}

// ChartData 按自然日展开每周产量，跨月周中不属于当月的日期不计入
func (e *Engine) ChartData(month, year int) model.ChartData {
	days := calendar.DaysInMonth(month, year)
	chart := model.ChartData{
		Labels:  make([]int, days),
		Actual:  make([]float64, days),
		Planned: make([]float64, days),
	}
	for i := range chart.Labels {
		chart.Labels[i] = i + 1
	}

	for i, w := range e.weeks {
		if i >= e.data.Len() {
			break
		}
		planned := e.data.PlannedProduction[i].Days()
		actual := e.data.ActualProduction[i].Days()
		for d, date := range calendar.WeekDates(w) {
			if !calendar.InMonth(date, month, year) {
				continue
			}
			chart.Planned[date.Day()-1] = planned[d]
			chart.Actual[date.Day()-1] = actual[d]
		}
	}
	return chart
}
