package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"prodplan/internal/model"
	"prodplan/internal/service/planner"
)

const (
	clientBuffer      = 16
	keepAliveInterval = 25 * time.Second
)

// Event 推送给浏览器的事件
type Event struct {
	Type      string      `json:"type"` // view | notice
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub SSE 事件中心，实现 planner.ViewSink
// 发送不阻塞：客户端缓冲已满时丢弃该事件。
type Hub struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

var _ planner.ViewSink = (*Hub)(nil)

// NewHub 创建事件中心
func NewHub() *Hub {
	return &Hub{
		clients: make(map[chan Event]struct{}),
		done:    make(chan struct{}),
	}
}

// Close 结束所有 SSE 连接，之后的连接立即返回
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Render 推送重算后的视图
func (h *Hub) Render(view *model.MonthView) {
	h.broadcast(Event{Type: "view", Data: view, Timestamp: time.Now()})
}

// Notify 推送提示消息
func (h *Hub) Notify(n planner.Notice) {
	h.broadcast(Event{Type: "notice", Data: n, Timestamp: time.Now()})
}

func (h *Hub) broadcast(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *Hub) subscribe() (chan Event, func()) {
	ch := make(chan Event, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Events 视图推送（SSE）
// GET /api/events
func (h *Handler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	send := func(e Event) bool {
		b, err := json.Marshal(e)
		if err != nil {
			return true
		}
		if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", e.Type, b); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	ch, unsubscribe := h.hub.subscribe()
	defer unsubscribe()

	if !send(Event{Type: "view", Data: h.ctrl.View(), Timestamp: time.Now()}) {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.hub.done:
			return
		case e := <-ch:
			if !send(e) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
