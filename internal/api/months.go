package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prodplan/internal/model"
	"prodplan/internal/service/calendar"
)

// GetView 当前月视图
// GET /api/view
func (h *Handler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.View())
}

type weeksResponse struct {
	Year      int          `json:"year"`
	Month     int          `json:"month"`
	MonthName string       `json:"monthName"`
	Weeks     []model.Week `json:"weeks"`
}

// GetWeeks 某月的周划分（month 从 0 开始）
// GET /api/weeks?year=2025&month=4
func (h *Handler) GetWeeks(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法年份"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 0 || month > 11 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法月份"})
		return
	}

	c.JSON(http.StatusOK, weeksResponse{
		Year:      year,
		Month:     month,
		MonthName: model.MonthName(month),
		Weeks:     calendar.WeeksInMonth(month, year),
	})
}

type selectMonthRequest struct {
	Year  int  `json:"year"`
	Month *int `json:"month"`
}

// SelectMonth 保存当前月后切换到指定年月
// POST /api/months/select
func (h *Handler) SelectMonth(c *gin.Context) {
	var req selectMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}
	if req.Year <= 0 || req.Month == nil || *req.Month < 0 || *req.Month > 11 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法年月"})
		return
	}

	view, err := h.ctrl.SelectMonth(req.Year, *req.Month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PrevMonth 上一个月
// POST /api/months/prev
func (h *Handler) PrevMonth(c *gin.Context) {
	view, err := h.ctrl.PrevMonth()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// NextMonth 下一个月
// POST /api/months/next
func (h *Handler) NextMonth(c *gin.Context) {
	view, err := h.ctrl.NextMonth()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CurrentMonth 回到本月
// POST /api/months/current
func (h *Handler) CurrentMonth(c *gin.Context) {
	view, err := h.ctrl.CurrentMonth()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
