package server

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"prodplan/internal/service/calculator"
	"prodplan/internal/service/planner"
	"prodplan/internal/service/store"
)

func newTestServer(t *testing.T, devMode bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := planner.New(store.NewMemoryStore(), calculator.NewEngine(), planner.Options{
		StartYear:  2025,
		StartMonth: 4,
		Now:        func() time.Time { return time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err := ctrl.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return NewServer(ctrl, Options{Port: 0, DevMode: devMode})
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/view", http.StatusOK},
		{http.MethodGet, "/api/status", http.StatusOK},
		{http.MethodOptions, "/api/edit", http.StatusNoContent},
		{http.MethodGet, "/index.html", http.StatusTemporaryRedirect},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); tt.path != "/healthz" && got != "*" {
				t.Errorf("CORS header = %q", got)
			}
		})
	}
}

func TestNoRouteOutsideDevMode(t *testing.T) {
	s := newTestServer(t, false)
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestShutdownClosesEventStreams(t *testing.T) {
	s := newTestServer(t, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	served := make(chan error, 1)
	go func() { served <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/events")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if strings.HasPrefix(line, "event: view") {
			break
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown with open stream: %v (after %v)", err, time.Since(start))
	}
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Serve did not return after Shutdown")
	}
}
