package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"dispatch-voice/internal/calls"
	"dispatch-voice/internal/dispatch"
	"dispatch-voice/internal/telephony"
	"dispatch-voice/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	defaultCallsLimit = 20
	maxCallsLimit     = 100
)

// TriggerCall places one outbound call.
func (h Handlers) TriggerCall(c *gin.Context) {
	if h.Dispatch == nil {
		notConfigured(c, "dispatch")
		return
	}
	var req dispatch.TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON in request body"})
		return
	}

	res, err := h.Dispatch.TriggerCall(c.Request.Context(), req)
	if err != nil {
		body := gin.H{"success": false, "error": err.Error()}
		switch {
		case errors.Is(err, dispatch.ErrValidation):
			c.AbortWithStatusJSON(http.StatusBadRequest, body)
		case errors.Is(err, dispatch.ErrConfigNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, body)
		case errors.Is(err, dispatch.ErrProvider):
			body["call_log_id"] = res.CallLogID
			c.AbortWithStatusJSON(http.StatusBadGateway, body)
		default:
			logger.FromGin(c).Error("trigger call failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"call_id":     res.CallID,
		"call_log_id": res.CallLogID,
		"message":     res.Message,
	})
}

// ProviderWebhook receives voice provider lifecycle events. A body that cannot
// be parsed is answered with 500 and mutates nothing.
func (h Handlers) ProviderWebhook(c *gin.Context) {
	if h.Dispatch == nil {
		notConfigured(c, "dispatch")
		return
	}
	ev, err := telephony.ParseWebhook(c.Request.Body)
	if err != nil {
		logger.FromGin(c).Warn("provider webhook rejected", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Dispatch.HandleWebhook(c.Request.Context(), ev))
}

func (h Handlers) ListCalls(c *gin.Context) {
	if h.Calls == nil {
		notConfigured(c, "calls")
		return
	}
	limit := defaultCallsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxCallsLimit)
	}

	out, err := h.Calls.List(c.Request.Context(), limit)
	if err != nil {
		logger.FromGin(c).Error("list calls failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": out})
}

func (h Handlers) GetCall(c *gin.Context) {
	if h.Calls == nil {
		notConfigured(c, "calls")
		return
	}
	callLog, err := h.Calls.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		logger.FromGin(c).Error("get call failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call lookup failed"})
		return
	}
	c.JSON(http.StatusOK, callLog)
}

func (h Handlers) ListCallEvents(c *gin.Context) {
	if h.Calls == nil || h.Events == nil {
		notConfigured(c, "call events")
		return
	}
	id := c.Param("id")
	if _, err := h.Calls.Get(c.Request.Context(), id); err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		logger.FromGin(c).Error("get call failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call lookup failed"})
		return
	}

	events, err := h.Events.ListByCall(c.Request.Context(), id)
	if err != nil {
		logger.FromGin(c).Error("list call events failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "event lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
