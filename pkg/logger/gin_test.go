package logger

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware(slog.Default()))

	var fromCtx *slog.Logger
	r.GET("/x", func(c *gin.Context) {
		fromCtx = From(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "rid-1" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	if fromCtx == nil || fromCtx == slog.Default() {
		t.Fatalf("expected request-scoped logger in request context")
	}
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware(slog.Default()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	if From(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger")
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("production", "") != slog.LevelInfo {
		t.Fatalf("expected info in production")
	}
	if parseLevel("dev", "") != slog.LevelDebug {
		t.Fatalf("expected debug in dev")
	}
	if parseLevel("local", "error") != slog.LevelError {
		t.Fatalf("expected explicit level to win")
	}
}
