package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"prodplan/internal/model"
	"prodplan/internal/service/calculator"
)

type editRequest struct {
	Series    model.Series    `json:"series"`
	WeekIndex *int            `json:"weekIndex"`
	Field     string          `json:"field"`
	Value     json.RawMessage `json:"value"`
}

// parseValue 数字或字符串均可；无法解析时按 0 处理
func parseValue(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return calculator.Sanitize(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return calculator.ParseLenient(s)
	}
	return 0
}

// Edit 修改单个输入字段，返回重算后的视图
// PATCH /api/edit
func (h *Handler) Edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}
	if req.Series == "" || req.Field == "" || req.WeekIndex == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "series、weekIndex、field 不能为空"})
		return
	}

	view, err := h.ctrl.ApplyEdit(model.Edit{
		Series:    req.Series,
		WeekIndex: *req.WeekIndex,
		Field:     req.Field,
		Value:     parseValue(req.Value),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Undo 撤销上一次修改
// POST /api/undo
func (h *Handler) Undo(c *gin.Context) {
	view, err := h.ctrl.Undo()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// LoadSample 写入演示数据
// POST /api/sample
func (h *Handler) LoadSample(c *gin.Context) {
	view, err := h.ctrl.LoadSample()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
