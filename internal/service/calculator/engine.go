package calculator

import (
	"errors"
	"fmt"

	"prodplan/internal/model"
)

// ProductionYield 原料转产出的固定得率：计划产量 / 0.8 为消耗的原料
const ProductionYield = 0.8

var (
	ErrWeekOutOfRange = errors.New("week index out of range")
	ErrUnknownField   = errors.New("unknown field")
)

// Engine 当月派生数据计算引擎
// 每次修改都同步完成全部派生字段的重算，调用方看不到中间状态。
type Engine struct {
	weeks []model.Week
	data  model.MonthDataset
}

// NewEngine 创建计算引擎
func NewEngine() *Engine {
	return &Engine{data: model.NewMonthDataset(nil)}
}

// Load 装载某月的周与数据，并全量重算
// 数据集长度与周数不一致时按周补齐或截断，周标签以 weeks 为准。
func (e *Engine) Load(weeks []model.Week, data model.MonthDataset) {
	e.weeks = append([]model.Week(nil), weeks...)
	e.data = data.Normalize(weeks)
	e.Recompute()
}

// Weeks 当前周列表
func (e *Engine) Weeks() []model.Week {
	return append([]model.Week(nil), e.weeks...)
}

// Dataset 当前数据集的拷贝
func (e *Engine) Dataset() model.MonthDataset {
	return e.data.Clone()
}

// SetRawMaterial 修改原料入库，重算该周合计与全月周末库存
func (e *Engine) SetRawMaterial(weekIndex int, field model.RawField, value float64) error {
	if err := e.checkWeek(weekIndex); err != nil {
		return err
	}
	row := &e.data.RawMaterial[weekIndex]
	value = Sanitize(value)
	switch field {
	case model.FieldPCW:
		row.PCW = value
	case model.FieldPIW:
		row.PIW = value
	default:
		return fmt.Errorf("%w: raw material %q", ErrUnknownField, field)
	}
	row.Total = row.PCW + row.PIW
	e.recomputeStock()
	return nil
}

// SetProductionDay 修改某天产量
// 计划产量变化会联动周末库存；两份分配吨数一并重算。
func (e *Engine) SetProductionDay(variant model.Variant, weekIndex int, day model.Day, value float64) error {
	if err := e.checkWeek(weekIndex); err != nil {
		return err
	}
	rows, err := e.production(variant)
	if err != nil {
		return err
	}
	row := &rows[weekIndex]
	if !row.SetDay(day, Sanitize(value)) {
		return fmt.Errorf("%w: production day %q", ErrUnknownField, day)
	}
	row.Total = productionTotal(*row)

	if variant == model.Planned {
		e.recomputeStock()
	}
	e.recomputeSplits()
	return nil
}

// SetSplitPercent 修改分配比例
// 调整规则（非等比，依赖编辑字段）：
//   - 改 RP101 或 RP106：NonPP = max(0, 100 - RP101 - RP106)
//   - 改 NonPP：RP101 = max(0, 100 - RP106 - NonPP)
//
// 随后按对应序列的周产量重算吨数。
func (e *Engine) SetSplitPercent(variant model.Variant, weekIndex int, field model.SplitField, value float64) error {
	if err := e.checkWeek(weekIndex); err != nil {
		return err
	}
	splits, err := e.splits(variant)
	if err != nil {
		return err
	}
	row := &splits[weekIndex]
	if err := applySplitPercent(row, field, ClampPercent(value)); err != nil {
		return err
	}

	production, _ := e.production(variant)
	applySplitTons(row, production[weekIndex].Total)
	return nil
}

// Recompute 全量重算：各行合计、周末库存、分配吨数
func (e *Engine) Recompute() {
	for i := range e.data.RawMaterial {
		row := &e.data.RawMaterial[i]
		row.Total = row.PCW + row.PIW
	}
	for i := range e.data.PlannedProduction {
		e.data.PlannedProduction[i].Total = productionTotal(e.data.PlannedProduction[i])
	}
	for i := range e.data.ActualProduction {
		e.data.ActualProduction[i].Total = productionTotal(e.data.ActualProduction[i])
	}
	e.recomputeStock()
	e.recomputeSplits()
}

// recomputeStock 周末库存为滚动余额，必须按周顺序全量计算
func (e *Engine) recomputeStock() {
	previous := 0.0
	for i := range e.data.RawMaterial {
		row := &e.data.RawMaterial[i]
		planned := 0.0
		if i < len(e.data.PlannedProduction) {
			planned = e.data.PlannedProduction[i].Total
		}
		row.EOWStock = previous + row.Total - planned/ProductionYield
		previous = row.EOWStock
	}
}

func (e *Engine) recomputeSplits() {
	for i := range e.data.PlannedSplit {
		applySplitTons(&e.data.PlannedSplit[i], e.data.PlannedProduction[i].Total)
	}
	for i := range e.data.ActualSplit {
		applySplitTons(&e.data.ActualSplit[i], e.data.ActualProduction[i].Total)
	}
}

func (e *Engine) checkWeek(weekIndex int) error {
	if weekIndex < 0 || weekIndex >= e.data.Len() {
		return fmt.Errorf("%w: %d (weeks=%d)", ErrWeekOutOfRange, weekIndex, e.data.Len())
	}
	return nil
}

func (e *Engine) production(variant model.Variant) ([]model.ProductionRow, error) {
	switch variant {
	case model.Planned:
		return e.data.PlannedProduction, nil
	case model.Actual:
		return e.data.ActualProduction, nil
	}
	return nil, fmt.Errorf("%w: variant %q", ErrUnknownField, variant)
}

func (e *Engine) splits(variant model.Variant) ([]model.SplitRow, error) {
	switch variant {
	case model.Planned:
		return e.data.PlannedSplit, nil
	case model.Actual:
		return e.data.ActualSplit, nil
	}
	return nil, fmt.Errorf("%w: variant %q", ErrUnknownField, variant)
}

func productionTotal(r model.ProductionRow) float64 {
	return r.Monday + r.Tuesday + r.Wednesday + r.Thursday + r.Friday + r.Saturday + r.Sunday
}
