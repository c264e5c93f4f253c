package exporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"prodplan/internal/model"
)

// WriteCSV 按五个分节写出 CSV，数值不做格式化
func WriteCSV(w io.Writer, ds model.MonthDataset) error {
	cw := csv.NewWriter(w)
	for i, s := range Sections(ds) {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{s.Title}); err != nil {
			return err
		}
		if err := cw.Write(s.Header); err != nil {
			return err
		}
		for r, values := range s.Rows {
			record := make([]string, 0, len(values)+1)
			record = append(record, s.Labels[r])
			for _, v := range values {
				record = append(record, formatNumber(v))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
