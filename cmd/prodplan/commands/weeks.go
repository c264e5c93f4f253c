package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"prodplan/internal/model"
	"prodplan/internal/service/calendar"
)

var weeksFlags struct {
	year  int
	month int
}

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "列出某月的周划分",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		year, month := weeksFlags.year, weeksFlags.month
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}
		if month < 1 || month > 12 {
			return fmt.Errorf("invalid month %d", month)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %d\n", model.MonthName(month-1), year)
		for i, w := range calendar.WeeksInMonth(month-1, year) {
			fmt.Fprintf(out, "%d\t%s\n", i, w.Label)
		}
		return nil
	},
}

func init() {
	weeksCmd.Flags().IntVar(&weeksFlags.year, "year", 0, "年份（默认今年）")
	weeksCmd.Flags().IntVar(&weeksFlags.month, "month", 0, "月份 1-12（默认本月）")
}
