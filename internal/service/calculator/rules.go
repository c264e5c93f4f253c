package calculator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"prodplan/internal/model"
)

// Sanitize 数值输入宽松处理：NaN、无穷、负数一律视为 0
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ClampPercent 比例限制在 [0, 100]
func ClampPercent(v float64) float64 {
	v = Sanitize(v)
	if v > 100 {
		return 100
	}
	return v
}

// ParseLenient 解析文本输入，无法解析时返回 0（不报错）
func ParseLenient(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return Sanitize(v)
}

func applySplitPercent(row *model.SplitRow, field model.SplitField, value float64) error {
	switch field {
	case model.FieldRP101Percent:
		row.RP101Percent = value
		row.NonPPPercent = math.Max(0, 100-row.RP101Percent-row.RP106Percent)
	case model.FieldRP106Percent:
		row.RP106Percent = value
		row.NonPPPercent = math.Max(0, 100-row.RP101Percent-row.RP106Percent)
	case model.FieldNonPPPercent:
		row.NonPPPercent = value
		row.RP101Percent = math.Max(0, 100-row.RP106Percent-row.NonPPPercent)
	default:
		return fmt.Errorf("%w: split %q", ErrUnknownField, field)
	}
	return nil
}

func applySplitTons(row *model.SplitRow, weeklyTotal float64) {
	row.RP101Tons = row.RP101Percent / 100 * weeklyTotal
	row.RP106Tons = row.RP106Percent / 100 * weeklyTotal
	row.NonPPTons = row.NonPPPercent / 100 * weeklyTotal
}
