package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prodplan/internal/model"
	"prodplan/internal/service/planner"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	planner.Status
	MonthName   string `json:"monthName"`
	Subscribers int    `json:"subscribers"` // 当前 SSE 连接数
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	st := h.ctrl.Status()
	c.JSON(http.StatusOK, StatusResponse{
		Status:      st,
		MonthName:   model.MonthName(st.Month),
		Subscribers: h.hub.ClientCount(),
	})
}

// Save 显式保存：远端失败时仍返回 200，outcome 为 local-only
// POST /api/save
func (h *Handler) Save(c *gin.Context) {
	result, err := h.ctrl.Save(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Autosave 请求一次防抖保存（例如页面失去焦点时），立即返回
// POST /api/autosave
func (h *Handler) Autosave(c *gin.Context) {
	h.ctrl.ScheduleSave()
	c.JSON(http.StatusAccepted, gin.H{"scheduled": true})
}

// Load 重新加载：远端 → 本地缓存；都没有时保持当前数据并提示
// POST /api/load
func (h *Handler) Load(c *gin.Context) {
	loaded, err := h.ctrl.Reload(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	message := planner.MsgLoaded
	if !loaded {
		message = planner.MsgNoSavedData
	}
	c.JSON(http.StatusOK, gin.H{
		"loaded":  loaded,
		"message": message,
		"view":    h.ctrl.View(),
	})
}

// GetData 全部月份数据（当前月已写回），可直接作为备份文件保存
// GET /api/data
func (h *Handler) GetData(c *gin.Context) {
	data, err := h.ctrl.Snapshot()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
