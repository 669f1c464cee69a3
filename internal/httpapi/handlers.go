package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"

	"dispatch-voice/internal/agents"
	"dispatch-voice/internal/audit"
	"dispatch-voice/internal/calls"
	"dispatch-voice/internal/dispatch"
	"dispatch-voice/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Checker reports whether one dependency is ready to serve.
type Checker func(ctx context.Context) error

// EventLister reads a call's lifecycle events.
type EventLister interface {
	ListByCall(ctx context.Context, callLogID string) ([]audit.Event, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, call internal services, return JSON.
type Handlers struct {
	Dispatch *dispatch.Service
	Agents   *agents.Service
	Calls    calls.Repository
	Events   EventLister
	Reports  *reporting.Service

	// Checks run on /readyz, keyed by dependency name.
	Checks map[string]Checker
}

const readyTimeout = 2 * time.Second

func (h Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h Handlers) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(gin.H, len(names))
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	body := gin.H{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	c.JSON(status, body)
}

func notConfigured(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": what + " not configured"})
}
