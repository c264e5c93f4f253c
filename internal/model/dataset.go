package model

import "encoding/json"

// 新月份的计划分配默认值
const (
	DefaultPlannedRP101Percent = 65
	DefaultPlannedRP106Percent = 29
	DefaultPlannedNonPPPercent = 6
)

// RawMaterialRow 原料入库（按周）
type RawMaterialRow struct {
	Week     string  `json:"week"`
	PCW      float64 `json:"pcw"`
	PIW      float64 `json:"piw"`
	Total    float64 `json:"total"`    // 计算字段：PCW + PIW
	EOWStock float64 `json:"eowStock"` // 计算字段：周末库存（滚动余额）
}

// ProductionRow 每日产量（计划/实际各一份）
type ProductionRow struct {
	Week      string  `json:"week"`
	Monday    float64 `json:"monday"`
	Tuesday   float64 `json:"tuesday"`
	Wednesday float64 `json:"wednesday"`
	Thursday  float64 `json:"thursday"`
	Friday    float64 `json:"friday"`
	Saturday  float64 `json:"saturday"`
	Sunday    float64 `json:"sunday"`
	Total     float64 `json:"total"` // 计算字段：七天之和
}

// Days 按周一到周日顺序返回七天产量
func (r ProductionRow) Days() [7]float64 {
	return [7]float64{r.Monday, r.Tuesday, r.Wednesday, r.Thursday, r.Friday, r.Saturday, r.Sunday}
}

// Day 读取某一天
func (r ProductionRow) Day(d Day) float64 {
	idx := d.Index()
	if idx < 0 {
		return 0
	}
	return r.Days()[idx]
}

// SetDay 设置某一天，未知的 day 返回 false
func (r *ProductionRow) SetDay(d Day, v float64) bool {
	switch d {
	case Monday:
		r.Monday = v
	case Tuesday:
		r.Tuesday = v
	case Wednesday:
		r.Wednesday = v
	case Thursday:
		r.Thursday = v
	case Friday:
		r.Friday = v
	case Saturday:
		r.Saturday = v
	case Sunday:
		r.Sunday = v
	default:
		return false
	}
	return true
}

// SplitRow 产品分配（计划/实际各一份）
type SplitRow struct {
	Week         string  `json:"week"`
	RP101Percent float64 `json:"rp101Percent"`
	RP106Percent float64 `json:"rp106Percent"`
	NonPPPercent float64 `json:"nonPPPercent"`
	RP101Tons    float64 `json:"rp101Tons"` // 计算字段
	RP106Tons    float64 `json:"rp106Tons"` // 计算字段
	NonPPTons    float64 `json:"nonPPTons"` // 计算字段
}

// WeekRows 同一周在五个序列中的行
type WeekRows struct {
	RawMaterial       RawMaterialRow
	PlannedProduction ProductionRow
	ActualProduction  ProductionRow
	PlannedSplit      SplitRow
	ActualSplit       SplitRow
}

// MonthDataset 一个月的五个序列，下标与该月的周顺序一致
type MonthDataset struct {
	RawMaterial       []RawMaterialRow `json:"rawMaterialData"`
	PlannedProduction []ProductionRow  `json:"plannedProductionData"`
	ActualProduction  []ProductionRow  `json:"actualProductionData"`
	PlannedSplit      []SplitRow       `json:"plannedSplitData"`
	ActualSplit       []SplitRow       `json:"actualSplitData"`
}

// NewMonthDataset 按周初始化全零数据集（计划分配使用默认比例）
func NewMonthDataset(weeks []Week) MonthDataset {
	ds := MonthDataset{
		RawMaterial:       make([]RawMaterialRow, len(weeks)),
		PlannedProduction: make([]ProductionRow, len(weeks)),
		ActualProduction:  make([]ProductionRow, len(weeks)),
		PlannedSplit:      make([]SplitRow, len(weeks)),
		ActualSplit:       make([]SplitRow, len(weeks)),
	}
	for i, w := range weeks {
		ds.SetRowsAt(i, NewWeekRows(w.Label))
	}
	return ds
}

// NewWeekRows 单周的初始行
func NewWeekRows(label string) WeekRows {
	return WeekRows{
		RawMaterial:       RawMaterialRow{Week: label},
		PlannedProduction: ProductionRow{Week: label},
		ActualProduction:  ProductionRow{Week: label},
		PlannedSplit: SplitRow{
			Week:         label,
			RP101Percent: DefaultPlannedRP101Percent,
			RP106Percent: DefaultPlannedRP106Percent,
			NonPPPercent: DefaultPlannedNonPPPercent,
		},
		ActualSplit: SplitRow{Week: label},
	}
}

// Len 周数（以最短的序列为准）
func (d MonthDataset) Len() int {
	n := len(d.RawMaterial)
	for _, l := range []int{len(d.PlannedProduction), len(d.ActualProduction), len(d.PlannedSplit), len(d.ActualSplit)} {
		if l < n {
			n = l
		}
	}
	return n
}

// RowsAt 读取第 i 周的全部行
func (d MonthDataset) RowsAt(i int) WeekRows {
	return WeekRows{
		RawMaterial:       d.RawMaterial[i],
		PlannedProduction: d.PlannedProduction[i],
		ActualProduction:  d.ActualProduction[i],
		PlannedSplit:      d.PlannedSplit[i],
		ActualSplit:       d.ActualSplit[i],
	}
}

// SetRowsAt 覆盖第 i 周的全部行
func (d MonthDataset) SetRowsAt(i int, rows WeekRows) {
	d.RawMaterial[i] = rows.RawMaterial
	d.PlannedProduction[i] = rows.PlannedProduction
	d.ActualProduction[i] = rows.ActualProduction
	d.PlannedSplit[i] = rows.PlannedSplit
	d.ActualSplit[i] = rows.ActualSplit
}

// Normalize 按周对齐：逐个序列补齐或截断，周标签以 weeks 为准
// 缺失的行使用新月份的初始值。
func (d MonthDataset) Normalize(weeks []Week) MonthDataset {
	out := NewMonthDataset(weeks)
	for i, w := range weeks {
		if i < len(d.RawMaterial) {
			out.RawMaterial[i] = d.RawMaterial[i]
			out.RawMaterial[i].Week = w.Label
		}
		if i < len(d.PlannedProduction) {
			out.PlannedProduction[i] = d.PlannedProduction[i]
			out.PlannedProduction[i].Week = w.Label
		}
		if i < len(d.ActualProduction) {
			out.ActualProduction[i] = d.ActualProduction[i]
			out.ActualProduction[i].Week = w.Label
		}
		if i < len(d.PlannedSplit) {
			out.PlannedSplit[i] = d.PlannedSplit[i]
			out.PlannedSplit[i].Week = w.Label
		}
		if i < len(d.ActualSplit) {
			out.ActualSplit[i] = d.ActualSplit[i]
			out.ActualSplit[i].Week = w.Label
		}
	}
	return out
}

// Clone 深拷贝
func (d MonthDataset) Clone() MonthDataset {
	return MonthDataset{
		RawMaterial:       append([]RawMaterialRow(nil), d.RawMaterial...),
		PlannedProduction: append([]ProductionRow(nil), d.PlannedProduction...),
		ActualProduction:  append([]ProductionRow(nil), d.ActualProduction...),
		PlannedSplit:      append([]SplitRow(nil), d.PlannedSplit...),
		ActualSplit:       append([]SplitRow(nil), d.ActualSplit...),
	}
}

// AllMonthsData 全部月份数据（持久化单元）
type AllMonthsData map[MonthKey]MonthDataset

// Clone 深拷贝
func (a AllMonthsData) Clone() AllMonthsData {
	if a == nil {
		return nil
	}
	out := make(AllMonthsData, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// SameAs 按序列化结果比较（与订阅推送的比较口径一致）
func (a AllMonthsData) SameAs(other AllMonthsData) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return string(left) == string(right)
}
