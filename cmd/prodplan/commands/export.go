package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"prodplan/internal/config"
	"prodplan/internal/exporter"
	"prodplan/internal/model"
	"prodplan/internal/persistence/postgres"
	"prodplan/internal/service/calculator"
	"prodplan/internal/service/planner"
	memstore "prodplan/internal/service/store"
	"prodplan/internal/store"
)

var exportFlags struct {
	year   int
	month  int
	format string
	out    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出某月数据（csv 或 xlsx）",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	f := exportCmd.Flags()
	f.IntVar(&exportFlags.year, "year", 0, "年份")
	f.IntVar(&exportFlags.month, "month", 0, "月份 1-12")
	f.StringVar(&exportFlags.format, "format", "csv", "csv | xlsx")
	f.StringVar(&exportFlags.out, "out", "", "输出文件；csv 可用 - 表示标准输出")
	_ = exportCmd.MarkFlagRequired("year")
	_ = exportCmd.MarkFlagRequired("month")
}

// loadSavedData 远端 → 本地缓存 → 最新备份
func loadSavedData(ctx context.Context, dataDir string) (model.AllMonthsData, string) {
	if cfg.Remote.DatabaseURL != "" {
		docs, err := postgres.Open(ctx, cfg.Remote.DatabaseURL, cfg.Remote.DocumentID)
		if err == nil {
			defer docs.Close()
			data, ok, err := docs.Load(ctx)
			if err == nil && ok {
				return data, "remote"
			}
			if err != nil {
				log.Warn().Err(err).Msg("remote load failed")
			}
		} else {
			log.Warn().Err(err).Msg("remote document store unavailable")
		}
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	if _, err := os.Stat(dbPath); err == nil {
		if cache, err := store.New(dbPath); err == nil {
			defer cache.Close()
			if data, ok, err := cache.LoadAllMonths(); err == nil && ok {
				return data, "local"
			} else if err != nil {
				log.Warn().Err(err).Msg("local cache read failed")
			}
		}
	}

	data, ok, err := planner.NewBackups(filepath.Join(dataDir, "backups"), cfg.Data.MaxBackups).Latest()
	if err != nil {
		log.Warn().Err(err).Msg("backup read failed")
	}
	if ok {
		return data, "backup"
	}
	return nil, "fresh"
}

func runExport(ctx context.Context, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if exportFlags.month < 1 || exportFlags.month > 12 || exportFlags.year <= 0 {
		return fmt.Errorf("invalid year/month: %d/%d", exportFlags.year, exportFlags.month)
	}
	format := strings.ToLower(exportFlags.format)
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q", exportFlags.format)
	}
	year, month := exportFlags.year, exportFlags.month-1

	data, source := loadSavedData(ctx, config.ResolveDataDir(cfg))
	mem := memstore.NewMemoryStore()
	if data != nil {
		mem.ReplaceAll(data)
	}

	ctrl := planner.New(mem, calculator.NewEngine(), planner.Options{StartYear: year, StartMonth: month})
	defer ctrl.Close()
	if err := ctrl.Init(ctx); err != nil {
		return err
	}
	_, _, ds, agg := ctrl.Current()

	out := exportFlags.out
	switch format {
	case "csv":
		if out == "" {
			out = exporter.CSVFileName(month, year)
		}
		if out == "-" {
			return exporter.WriteCSV(stdout, ds)
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := exporter.WriteCSV(f, ds); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	case "xlsx":
		if out == "" || out == "-" {
			out = exporter.XLSXFileName(month, year)
		}
		wb, err := exporter.BuildWorkbook(ds, agg, exporter.Options{Year: year, Month: month})
		if err != nil {
			return err
		}
		defer wb.Close()
		if err := wb.SaveAs(out); err != nil {
			return err
		}
	}

	log.Info().Str("file", out).Str("source", source).Str("month", string(model.NewMonthKey(year, month))).Msg("exported")
	return nil
}
