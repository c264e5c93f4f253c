package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"prodplan/internal/api"
	"prodplan/internal/service/planner"
)

const devFrontendURL = "http://localhost:5173"

// Options 服务器参数
type Options struct {
	Port      int
	DevMode   bool
	ExportDir string // xlsx 导出目录，为空时用系统临时目录
}

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	http    *http.Server
	handler *api.Handler
	hub     *api.Hub
}

// NewServer 创建服务器
func NewServer(ctrl *planner.Controller, opts Options) *Server {
	if !opts.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := api.NewHub()
	s := &Server{
		router:  gin.New(),
		handler: api.NewHandler(ctrl, hub, opts.ExportDir),
		hub:     hub,
	}
	s.router.Use(gin.Recovery(), requestLogger())

	s.setupRoutes(opts.DevMode)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// SSE 长连接不会自行变为空闲，Shutdown 时先结束它们
	s.http.RegisterOnShutdown(hub.Close)
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := s.router.Group("/api")
	{
		s.handler.RegisterRoutes(group)
	}

	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, devFrontendURL+c.Request.URL.Path)
		})
		return
	}
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// requestLogger 访问日志；SSE 长连接只记一次
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Error()
		} else if c.Writer.Status() >= http.StatusBadRequest {
			evt = log.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 监听地址
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run 启动服务器，Shutdown 后返回 nil
func (s *Server) Run() error {
	log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve 在已有的 listener 上提供服务，Shutdown 后返回 nil
func (s *Server) Serve(ln net.Listener) error {
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
