package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"prodplan/internal/model"
)

const summarySheet = "Summary"

// Options 导出选项
type Options struct {
	Year     int
	Month    int // 0 起始
	Progress func(ProgressEvent)
}

// BuildWorkbook 每张表一个工作表，另附月度汇总
func BuildWorkbook(ds model.MonthDataset, agg model.Aggregates, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()
	sections := Sections(ds)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(opts.Progress, 5, "准备工作簿")
	for i, s := range sections {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Sheet); err != nil {
				_ = f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(s.Sheet); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := writeSection(f, s, headerStyle); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("写入 %s 失败: %w", s.Sheet, err)
		}
		reportProgress(opts.Progress, 10+(i+1)*15, s.Title)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeSummary(f, opts, agg, headerStyle); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入汇总失败: %w", err)
	}
	reportProgress(opts.Progress, 100, "完成")

	f.SetActiveSheet(0)
	return f, nil
}

func writeSection(f *excelize.File, s Section, headerStyle int) error {
	if err := f.SetCellValue(s.Sheet, "A1", s.Title); err != nil {
		return err
	}
	header := make([]interface{}, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Sheet, "A2", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(s.Sheet, 2, 2, headerStyle); err != nil {
		return err
	}

	for r, values := range s.Rows {
		row := make([]interface{}, 0, len(values)+1)
		row = append(row, s.Labels[r])
		for _, v := range values {
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Sheet, cell, &row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(s.Header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(s.Sheet, "A", "A", 18); err != nil {
		return err
	}
	return f.SetColWidth(s.Sheet, "B", lastCol, 16)
}

func writeSummary(f *excelize.File, opts Options, agg model.Aggregates, headerStyle int) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Month", fmt.Sprintf("%s %d", model.MonthName(opts.Month), opts.Year)},
		{"PCW Total", agg.RawMaterial.PCW},
		{"PIW Total", agg.RawMaterial.PIW},
		{"Raw Material Total", agg.RawMaterial.Total},
		{"End of Month Stock", agg.RawMaterial.EOWStock},
		{"Planned Production Total", agg.PlannedProduction.Total},
		{"Actual Production Total", agg.ActualProduction.Total},
		{"Planned RP 101 Black (%)", agg.PlannedSplit.RP101Percent},
		{"Planned RP 106 White (%)", agg.PlannedSplit.RP106Percent},
		{"Planned Non PP (%)", agg.PlannedSplit.NonPPPercent},
		{"Actual RP 101 Black (%)", agg.ActualSplit.RP101Percent},
		{"Actual RP 106 White (%)", agg.ActualSplit.RP106Percent},
		{"Actual Non PP (%)", agg.ActualSplit.NonPPPercent},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(summarySheet, 1, 1, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 28)
}
