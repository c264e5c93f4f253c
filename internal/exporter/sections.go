package exporter

import (
	"fmt"

	"prodplan/internal/model"
)

// Section 导出的一张表
type Section struct {
	Title  string
	Sheet  string
	Header []string
	Labels []string
	Rows   [][]float64
}

var (
	productionHeader = []string{"Week", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday", "Total"}
	splitHeader      = []string{"Week", "RP 101 Black (%)", "RP 106 White (%)", "Non PP (%)", "RP 101 Black (Tons)", "RP 106 White (Tons)", "Non PP (Tons)"}
)

// Sections 当月五张表，顺序固定
func Sections(ds model.MonthDataset) []Section {
	raw := Section{
		Title:  "Raw Material Received Per Week",
		Sheet:  "Raw Material",
		Header: []string{"Week", "PCW", "PIW", "Total", "End of Week Stock"},
	}
	for _, r := range ds.RawMaterial {
		raw.Labels = append(raw.Labels, r.Week)
		raw.Rows = append(raw.Rows, []float64{r.PCW, r.PIW, r.Total, r.EOWStock})
	}

	return []Section{
		raw,
		productionSection("Planned Daily Production", "Planned Production", ds.PlannedProduction),
		productionSection("Actual Daily Production", "Actual Production", ds.ActualProduction),
		splitSection("Planned Product Split", "Planned Split", ds.PlannedSplit),
		splitSection("Actual Product Split", "Actual Split", ds.ActualSplit),
	}
}

func productionSection(title, sheet string, rows []model.ProductionRow) Section {
	s := Section{Title: title, Sheet: sheet, Header: productionHeader}
	for _, r := range rows {
		days := r.Days()
		s.Labels = append(s.Labels, r.Week)
		s.Rows = append(s.Rows, append(days[:], r.Total))
	}
	return s
}

func splitSection(title, sheet string, rows []model.SplitRow) Section {
	s := Section{Title: title, Sheet: sheet, Header: splitHeader}
	for _, r := range rows {
		s.Labels = append(s.Labels, r.Week)
		s.Rows = append(s.Rows, []float64{r.RP101Percent, r.RP106Percent, r.NonPPPercent, r.RP101Tons, r.RP106Tons, r.NonPPTons})
	}
	return s
}

// CSVFileName Production_Planning_<月份英文名>_<年>.csv
func CSVFileName(month, year int) string {
	return fmt.Sprintf("Production_Planning_%s_%d.csv", model.MonthName(month), year)
}

// XLSXFileName 同名的 xlsx 文件
func XLSXFileName(month, year int) string {
	return fmt.Sprintf("Production_Planning_%s_%d.xlsx", model.MonthName(month), year)
}
