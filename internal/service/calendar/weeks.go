package calendar

import (
	"fmt"
	"time"

	"prodplan/internal/model"
)

const labelLayout = "2 Jan"

// WeeksInMonth 返回与指定月份有重叠的所有自然周（周一开始）
// month 从 0 开始。首周从当月 1 日当天或之前最近的周一开始，
// 只要该周任意一天落在当月就计入，因此结果为 4~6 周。
func WeeksInMonth(month, year int) []model.Week {
	first := firstOfMonth(year, month)
	last := first.AddDate(0, 1, -1)

	// 周一为 0
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)

	weeks := make([]model.Week, 0, 6)
	for !start.After(last) {
		end := start.AddDate(0, 0, 6)
		weeks = append(weeks, model.Week{
			Label:     FormatLabel(start, end),
			StartDate: start,
			EndDate:   end,
		})
		start = start.AddDate(0, 0, 7)
	}
	return weeks
}

// FormatLabel 周标签，如 "28 Apr - 4 May"
func FormatLabel(start, end time.Time) string {
	return fmt.Sprintf("%s - %s", start.Format(labelLayout), end.Format(labelLayout))
}

// DaysInMonth 当月天数
func DaysInMonth(month, year int) int {
	return firstOfMonth(year, month).AddDate(0, 1, -1).Day()
}

// WeekDates 周一到周日的七个日期
func WeekDates(w model.Week) [7]time.Time {
	var out [7]time.Time
	for i := range out {
		out[i] = w.StartDate.AddDate(0, 0, i)
	}
	return out
}

// InMonth 判断日期是否属于指定年月
func InMonth(t time.Time, month, year int) bool {
	return t.Year() == year && int(t.Month())-1 == month
}

// NeighbourMonths 跨月周所涉及的其他月份（按周起始、周结束的顺序，去重）
func NeighbourMonths(w model.Week, month, year int) []model.MonthKey {
	var keys []model.MonthKey
	for _, t := range []time.Time{w.StartDate, w.EndDate} {
		if InMonth(t, month, year) {
			continue
		}
		key := model.NewMonthKey(t.Year(), int(t.Month())-1)
		if len(keys) > 0 && keys[len(keys)-1] == key {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// IndexOfLabel 按标签查找周下标，找不到返回 -1
func IndexOfLabel(weeks []model.Week, label string) int {
	for i, w := range weeks {
		if w.Label == label {
			return i
		}
	}
	return -1
}

func firstOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
}
