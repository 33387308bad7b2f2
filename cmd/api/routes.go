package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-dream-studios/dev-cms-sub001/internal/httpapi"
	"github.com/open-dream-studios/dev-cms-sub001/internal/rbac"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/utils"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, db *sql.DB, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: These endpoints should be protected by Twilio signature validation in production.
	webhooks := r.Group("/webhooks/twilio")
	{
		webhooks.POST("/voice", h.InboundVoice)
		webhooks.POST("/status", h.StatusCallback)
		webhooks.POST("/recording", h.RecordingCallback)
	}

	// AUTH routes (token issuance) stay public; everything else under /v1
	// requires a bearer token.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		voice := v1.Group("/voice")
		voice.Use(rbac.RequireWorkspace())
		voice.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgent, rbac.RoleSuperAdmin))
		{
			voice.POST("/token", h.VoiceToken)
			voice.POST("/terminate", h.TerminateCall)
		}

		// WebSocket handshakes cannot carry an Authorization header from a
		// browser, so this route also accepts the token as a query parameter.
		r.GET("/v1/voice/events",
			httpapi.BearerFromQuery(), authMW, rbac.RequireWorkspace(),
			h.VoiceEvents)
	}
}
