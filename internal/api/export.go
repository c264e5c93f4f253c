package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"prodplan/internal/exporter"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	downloadTTL     = 10 * time.Minute
)

func contentDisposition(fileName string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fileName, url.PathEscape(fileName))
}

// ExportCSV 导出当前月 CSV
// GET /api/export/csv
func (h *Handler) ExportCSV(c *gin.Context) {
	year, month, ds, _ := h.ctrl.Current()

	c.Header("Content-Disposition", contentDisposition(exporter.CSVFileName(month, year)))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := exporter.WriteCSV(c.Writer, ds); err != nil {
		log.Error().Err(err).Msg("csv export failed")
	}
}

// writeWorkbook 生成 xlsx 临时文件并登记下载 token
func (h *Handler) writeWorkbook(progress func(exporter.ProgressEvent)) (token, fileName string, err error) {
	year, month, ds, agg := h.ctrl.Current()

	f, err := exporter.BuildWorkbook(ds, agg, exporter.Options{Year: year, Month: month, Progress: progress})
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	if err := os.MkdirAll(h.exportDir, 0755); err != nil {
		return "", "", fmt.Errorf("创建导出目录失败: %w", err)
	}
	tempPath := filepath.Join(h.exportDir, fmt.Sprintf("prodplan_export_%s.xlsx", uuid.NewString()))
	if err := f.SaveAs(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return "", "", fmt.Errorf("写入导出文件失败: %w", err)
	}

	fileName = exporter.XLSXFileName(month, year)
	return h.downloads.put(tempPath, fileName, downloadTTL), fileName, nil
}

// Export 导出 xlsx，返回一次性下载地址
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	token, fileName, err := h.writeWorkbook(nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"fileName":    fileName,
		"downloadUrl": "/api/export/download/" + token,
	})
}

// ExportStream 导出 xlsx（SSE 进度 + 完成后提供下载地址）
// POST /api/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	send := func(event Event) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(Event{Type: "start", Data: map[string]any{"percent": 0}, Timestamp: time.Now()})

	lastPercent := -1
	token, fileName, err := h.writeWorkbook(func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(Event{Type: "progress", Data: map[string]any{"percent": p.Percent, "stage": p.Stage}, Timestamp: time.Now()})
	})
	if err != nil {
		send(Event{Type: "error", Data: map[string]any{"message": "导出失败: " + err.Error()}, Timestamp: time.Now()})
		return
	}

	send(Event{
		Type: "done",
		Data: map[string]any{
			"percent":     100,
			"fileName":    fileName,
			"downloadUrl": "/api/export/download/" + token,
		},
		Timestamp: time.Now(),
	})
}

// DownloadExport 下载导出的 xlsx（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(item.fileName))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}
