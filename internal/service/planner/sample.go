package planner

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"

	"prodplan/internal/model"
)

//go:embed sample.yaml
var sampleYAML []byte

type sampleDays struct {
	Monday    float64 `yaml:"monday"`
	Tuesday   float64 `yaml:"tuesday"`
	Wednesday float64 `yaml:"wednesday"`
	Thursday  float64 `yaml:"thursday"`
	Friday    float64 `yaml:"friday"`
	Saturday  float64 `yaml:"saturday"`
	Sunday    float64 `yaml:"sunday"`
}

func (d sampleDays) apply(row *model.ProductionRow) {
	row.Monday = d.Monday
	row.Tuesday = d.Tuesday
	row.Wednesday = d.Wednesday
	row.Thursday = d.Thursday
	row.Friday = d.Friday
	row.Saturday = d.Saturday
	row.Sunday = d.Sunday
}

type sampleSplit struct {
	RP101Percent float64 `yaml:"rp101Percent"`
	RP106Percent float64 `yaml:"rp106Percent"`
	NonPPPercent float64 `yaml:"nonPPPercent"`
}

func (s sampleSplit) apply(row *model.SplitRow) {
	row.RP101Percent = s.RP101Percent
	row.RP106Percent = s.RP106Percent
	row.NonPPPercent = s.NonPPPercent
}

// Scenario 演示数据
type Scenario struct {
	RawMaterial struct {
		PCW float64 `yaml:"pcw"`
		PIW float64 `yaml:"piw"`
	} `yaml:"rawMaterial"`
	PlannedProduction    sampleDays  `yaml:"plannedProduction"`
	ActualFirstWeek      sampleDays  `yaml:"actualFirstWeek"`
	PlannedSplit         sampleSplit `yaml:"plannedSplit"`
	ActualSplitFirstWeek sampleSplit `yaml:"actualSplitFirstWeek"`
}

// DefaultScenario 内置演示数据
func DefaultScenario() (Scenario, error) {
	return ParseScenario(sampleYAML)
}

// ParseScenario 解析 YAML 演示数据
func ParseScenario(raw []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse sample scenario: %w", err)
	}
	return s, nil
}

// Apply 把演示数据写入数据集的输入字段，派生字段由引擎重算
func (s Scenario) Apply(ds model.MonthDataset) model.MonthDataset {
	out := ds.Clone()
	for i := range out.RawMaterial {
		out.RawMaterial[i].PCW = s.RawMaterial.PCW
		out.RawMaterial[i].PIW = s.RawMaterial.PIW
	}
	for i := range out.PlannedProduction {
		s.PlannedProduction.apply(&out.PlannedProduction[i])
	}
	for i := range out.PlannedSplit {
		s.PlannedSplit.apply(&out.PlannedSplit[i])
	}
	if len(out.ActualProduction) > 0 {
		out.ActualProduction[0].Monday = s.ActualFirstWeek.Monday
		out.ActualProduction[0].Tuesday = s.ActualFirstWeek.Tuesday
	}
	if len(out.ActualSplit) > 0 {
		s.ActualSplitFirstWeek.apply(&out.ActualSplit[0])
	}
	return out
}
