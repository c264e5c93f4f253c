package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"prodplan/internal/service/calculator"
	"prodplan/internal/service/planner"
)

// Handler 生产计划 API 处理器
type Handler struct {
	ctrl      *planner.Controller
	hub       *Hub
	downloads *exportDownloadStore
	exportDir string
}

// NewHandler 创建处理器，并把事件中心注册为控制器的视图接收方
// exportDir 为 xlsx 导出文件目录，为空时使用系统临时目录。
func NewHandler(ctrl *planner.Controller, hub *Hub, exportDir string) *Handler {
	if hub == nil {
		hub = NewHub()
	}
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	ctrl.AddSink(hub)
	return &Handler{
		ctrl:      ctrl,
		hub:       hub,
		downloads: newExportDownloadStore(),
		exportDir: exportDir,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 当前视图与月份切换
	router.GET("/view", h.GetView)
	router.GET("/weeks", h.GetWeeks)
	router.POST("/months/select", h.SelectMonth)
	router.POST("/months/prev", h.PrevMonth)
	router.POST("/months/next", h.NextMonth)
	router.POST("/months/current", h.CurrentMonth)

	// 编辑
	router.PATCH("/edit", h.Edit)
	router.POST("/undo", h.Undo)
	router.POST("/sample", h.LoadSample)

	// 持久化
	router.POST("/save", h.Save)
	router.POST("/autosave", h.Autosave)
	router.POST("/load", h.Load)
	router.GET("/data", h.GetData)

	// 导出
	router.GET("/export/csv", h.ExportCSV)
	router.POST("/export", h.Export)
	router.POST("/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)

	// 视图推送
	router.GET("/events", h.Events)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, calculator.ErrWeekOutOfRange),
		errors.Is(err, calculator.ErrUnknownField),
		errors.Is(err, planner.ErrUnknownSeries):
		status = http.StatusBadRequest
	case errors.Is(err, planner.ErrNothingToUndo):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
