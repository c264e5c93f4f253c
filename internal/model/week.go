package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Week 日历周（周一开始，共 7 天）
// Label 是跨月视图之间唯一稳定的关联键
type Week struct {
	Label     string    `json:"label"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// MonthKey 月份键："<year>-<month>"，month 从 0 开始（0=一月）
type MonthKey string

// NewMonthKey 创建月份键
func NewMonthKey(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%d-%d", year, month))
}

// ParseMonthKey 解析月份键，返回年份与 0 起始的月份
func ParseMonthKey(key MonthKey) (year, month int, err error) {
	parts := strings.SplitN(string(key), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month key: %q", key)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month key year: %q", key)
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 0 || month > 11 {
		return 0, 0, fmt.Errorf("invalid month key month: %q", key)
	}
	return year, month, nil
}

// ShiftMonth 月份偏移（处理跨年）
func ShiftMonth(year, month, delta int) (int, int) {
	total := year*12 + month + delta
	y := total / 12
	m := total % 12
	if m < 0 {
		m += 12
		y--
	}
	return y, m
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName 英文月份全称，month 从 0 开始
func MonthName(month int) string {
	if month < 0 || month > 11 {
		return ""
	}
	return monthNames[month]
}
