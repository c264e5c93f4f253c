package model

// Series 表格序列
type Series string

const (
	SeriesRawMaterial       Series = "rawMaterial"
	SeriesPlannedProduction Series = "plannedProduction"
	SeriesActualProduction  Series = "actualProduction"
	SeriesPlannedSplit      Series = "plannedSplit"
	SeriesActualSplit       Series = "actualSplit"
)

// Variant 计划 / 实际
type Variant string

const (
	Planned Variant = "planned"
	Actual  Variant = "actual"
)

// RawField 原料可编辑字段
type RawField string

const (
	FieldPCW RawField = "pcw"
	FieldPIW RawField = "piw"
)

// Day 星期字段
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days 周一到周日
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index 周一为 0，未知返回 -1
func (d Day) Index() int {
	for i, v := range Days {
		if v == d {
			return i
		}
	}
	return -1
}

// SplitField 分配比例字段
type SplitField string

const (
	FieldRP101Percent SplitField = "rp101Percent"
	FieldRP106Percent SplitField = "rp106Percent"
	FieldNonPPPercent SplitField = "nonPPPercent"
)

// Edit 单字段编辑命令
type Edit struct {
	Series    Series  `json:"series"`
	WeekIndex int     `json:"weekIndex"`
	Field     string  `json:"field"`
	Value     float64 `json:"value"`
}
