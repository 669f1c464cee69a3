package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"dispatch-voice/internal/agents"
	"dispatch-voice/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h Handlers) CreateAgentConfig(c *gin.Context) {
	if h.Agents == nil {
		notConfigured(c, "agents")
		return
	}
	var req agents.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cfg, err := h.Agents.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, agents.ErrInvalidConfig) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.FromGin(c).Error("create agent config failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h Handlers) ListAgentConfigs(c *gin.Context) {
	if h.Agents == nil {
		notConfigured(c, "agents")
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	out, err := h.Agents.List(c.Request.Context(), limit)
	if err != nil {
		logger.FromGin(c).Error("list agent configs failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_configs": out})
}

func (h Handlers) GetAgentConfig(c *gin.Context) {
	if h.Agents == nil {
		notConfigured(c, "agents")
		return
	}
	cfg, err := h.Agents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "agent config not found"})
			return
		}
		logger.FromGin(c).Error("get agent config failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
