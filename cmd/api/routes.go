package main

import (
	"dispatch-voice/internal/httpapi"
	"dispatch-voice/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider webhooks (public). Retell posts both call_ended and update_only here.
	r.POST("/webhooks/retell", h.ProviderWebhook)

	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		readers := rbac.RequireAnyRole(rbac.RoleDispatcher, rbac.RoleViewer)

		callsGroup := v1.Group("/calls")
		{
			callsGroup.POST("", rbac.RequireAnyRole(rbac.RoleDispatcher), h.TriggerCall)
			callsGroup.GET("", readers, h.ListCalls)
			callsGroup.GET("/:id", readers, h.GetCall)
			callsGroup.GET("/:id/events", readers, h.ListCallEvents)
		}

		agentConfigs := v1.Group("/agent-configs")
		{
			agentConfigs.POST("", rbac.RequireAnyRole(rbac.RoleAdmin), h.CreateAgentConfig)
			agentConfigs.GET("", readers, h.ListAgentConfigs)
			agentConfigs.GET("/:id", readers, h.GetAgentConfig)
		}

		v1.GET("/reports/calls", readers, h.CallsReport)
	}
}
