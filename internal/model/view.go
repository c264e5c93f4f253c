package model

// RawMaterialTotals 原料表合计行
type RawMaterialTotals struct {
	PCW      float64 `json:"pcw"`
	PIW      float64 `json:"piw"`
	Total    float64 `json:"total"`
	EOWStock float64 `json:"eowStock"` // 最后一周的周末库存
}

// ProductionTotals 产量表合计行
type ProductionTotals struct {
	Monday    float64 `json:"monday"`
	Tuesday   float64 `json:"tuesday"`
	Wednesday float64 `json:"wednesday"`
	Thursday  float64 `json:"thursday"`
	Friday    float64 `json:"friday"`
	Saturday  float64 `json:"saturday"`
	Sunday    float64 `json:"sunday"`
	Total     float64 `json:"total"`
}

// SplitTotals 分配表合计行：吨数求和，比例为吨数加权
type SplitTotals struct {
	RP101Percent float64 `json:"rp101Percent"`
	RP106Percent float64 `json:"rp106Percent"`
	NonPPPercent float64 `json:"nonPPPercent"`
	RP101Tons    float64 `json:"rp101Tons"`
	RP106Tons    float64 `json:"rp106Tons"`
	NonPPTons    float64 `json:"nonPPTons"`
}

// Aggregates 当月汇总
type Aggregates struct {
	RawMaterial       RawMaterialTotals `json:"rawMaterial"`
	PlannedProduction ProductionTotals  `json:"plannedProduction"`
	ActualProduction  ProductionTotals  `json:"actualProduction"`
	PlannedSplit      SplitTotals       `json:"plannedSplit"`
	ActualSplit       SplitTotals       `json:"actualSplit"`
}

// ChartData 按自然日的产量曲线（只含当月日期）
type ChartData struct {
	Labels  []int     `json:"labels"`
	Actual  []float64 `json:"actual"`
	Planned []float64 `json:"planned"`
}

// RawMaterialView 原料表行
type RawMaterialView struct {
	RawMaterialRow
	TotalText    string `json:"totalText"`
	EOWStockText string `json:"eowStockText"`
}

// ProductionView 产量表行
type ProductionView struct {
	ProductionRow
	TotalText string `json:"totalText"`
}

// SplitView 分配表行
type SplitView struct {
	SplitRow
	RP101TonsText string `json:"rp101TonsText"`
	RP106TonsText string `json:"rp106TonsText"`
	NonPPTonsText string `json:"nonPPTonsText"`
}

// MonthView 当月完整视图（表格 + 合计 + 图表）
type MonthView struct {
	Key               MonthKey          `json:"key"`
	Year              int               `json:"year"`
	Month             int               `json:"month"` // 0 起始
	MonthName         string            `json:"monthName"`
	Weeks             []Week            `json:"weeks"`
	RawMaterial       []RawMaterialView `json:"rawMaterial"`
	PlannedProduction []ProductionView  `json:"plannedProduction"`
	ActualProduction  []ProductionView  `json:"actualProduction"`
	PlannedSplit      []SplitView       `json:"plannedSplit"`
	ActualSplit       []SplitView       `json:"actualSplit"`
	Aggregates        Aggregates        `json:"aggregates"`
	Footer            map[string]string `json:"footer"`
	Chart             ChartData         `json:"chart"`
}
