package planner

import (
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"prodplan/internal/model"
)

// fixed 按固定小数位格式化；对二进制精确值四舍五入（1.005 → "1.00"）
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', int(places), 64)
	}
	// float64 的精确十进制展开不超过 1074 位小数
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(v).Text('f', 1100))
	if err != nil {
		return decimal.NewFromFloat(v).StringFixed(places)
	}
	return exact.StringFixed(places)
}

func percentText(v float64) string {
	return fixed(v, 1) + "%"
}

// BuildView 组装表格行、页脚合计与图表
func BuildView(year, month int, weeks []model.Week, ds model.MonthDataset, agg model.Aggregates, chart model.ChartData) *model.MonthView {
	view := &model.MonthView{
		Key:               model.NewMonthKey(year, month),
		Year:              year,
		Month:             month,
		MonthName:         model.MonthName(month),
		Weeks:             weeks,
		RawMaterial:       make([]model.RawMaterialView, 0, len(ds.RawMaterial)),
		PlannedProduction: productionViews(ds.PlannedProduction),
		ActualProduction:  productionViews(ds.ActualProduction),
		PlannedSplit:      splitViews(ds.PlannedSplit),
		ActualSplit:       splitViews(ds.ActualSplit),
		Aggregates:        agg,
		Footer:            footer(agg),
		Chart:             chart,
	}
	for _, r := range ds.RawMaterial {
		view.RawMaterial = append(view.RawMaterial, model.RawMaterialView{
			RawMaterialRow: r,
			TotalText:      fixed(r.Total, 1),
			EOWStockText:   fixed(r.EOWStock, 1),
		})
	}
	return view
}

func productionViews(rows []model.ProductionRow) []model.ProductionView {
	out := make([]model.ProductionView, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.ProductionView{ProductionRow: r, TotalText: fixed(r.Total, 1)})
	}
	return out
}

func splitViews(rows []model.SplitRow) []model.SplitView {
	out := make([]model.SplitView, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.SplitView{
			SplitRow:      r,
			RP101TonsText: fixed(r.RP101Tons, 2),
			RP106TonsText: fixed(r.RP106Tons, 2),
			NonPPTonsText: fixed(r.NonPPTons, 2),
		})
	}
	return out
}

// footer 页脚文本，键与页面元素 id 对应
func footer(agg model.Aggregates) map[string]string {
	f := map[string]string{
		"pcw-total": fixed(agg.RawMaterial.PCW, 1),
		"piw-total": fixed(agg.RawMaterial.PIW, 1),
		"raw-total": fixed(agg.RawMaterial.Total, 1),
		"eow-stock": fixed(agg.RawMaterial.EOWStock, 1),
	}
	productionFooter(f, "planned", agg.PlannedProduction)
	productionFooter(f, "actual", agg.ActualProduction)
	splitFooter(f, "planned", agg.PlannedSplit)
	splitFooter(f, "actual", agg.ActualSplit)
	return f
}

func productionFooter(f map[string]string, prefix string, t model.ProductionTotals) {
	f[prefix+"-m-total"] = fixed(t.Monday, 1)
	f[prefix+"-t-total"] = fixed(t.Tuesday, 1)
	f[prefix+"-w-total"] = fixed(t.Wednesday, 1)
	f[prefix+"-th-total"] = fixed(t.Thursday, 1)
	f[prefix+"-f-total"] = fixed(t.Friday, 1)
	f[prefix+"-s-total"] = fixed(t.Saturday, 1)
	f[prefix+"-su-total"] = fixed(t.Sunday, 1)
	f[prefix+"-total"] = fixed(t.Total, 1)
	f["monthly-"+prefix+"-total"] = fixed(t.Total, 1)
}

func splitFooter(f map[string]string, prefix string, t model.SplitTotals) {
	f[prefix+"-rp101-percent"] = percentText(t.RP101Percent)
	f[prefix+"-rp106-percent"] = percentText(t.RP106Percent)
	f[prefix+"-nonPP-percent"] = percentText(t.NonPPPercent)
	f[prefix+"-rp101-total"] = fixed(t.RP101Tons, 2)
	f[prefix+"-rp106-total"] = fixed(t.RP106Tons, 2)
	f[prefix+"-nonPP-total"] = fixed(t.NonPPTons, 2)
}
