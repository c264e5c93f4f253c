package persistence

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"prodplan/internal/model"
)

var errEmptyRepair = errors.New("repaired document is empty")

// DecodeAllMonths 解析整份数据的 JSON；格式损坏时尝试修复一次，repaired 表示用了修复结果
func DecodeAllMonths(raw string) (data model.AllMonthsData, repaired bool, err error) {
	if err = json.Unmarshal([]byte(raw), &data); err == nil {
		return data, false, nil
	}
	decodeErr := err

	fixed, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode all-months data: %w", decodeErr)
	}
	data = nil
	if err := json.Unmarshal([]byte(fixed), &data); err != nil {
		return nil, false, fmt.Errorf("failed to decode all-months data: %w", decodeErr)
	}
	if len(data) == 0 {
		return nil, false, fmt.Errorf("failed to decode all-months data: %w", errEmptyRepair)
	}
	return data, true, nil
}
