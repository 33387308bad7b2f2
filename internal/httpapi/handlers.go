package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-dream-studios/dev-cms-sub001/internal/audit"
	"github.com/open-dream-studios/dev-cms-sub001/internal/auth"
	"github.com/open-dream-studios/dev-cms-sub001/internal/broadcast"
	"github.com/open-dream-studios/dev-cms-sub001/internal/calls"
	"github.com/open-dream-studios/dev-cms-sub001/internal/presence"
	"github.com/open-dream-studios/dev-cms-sub001/internal/routing"
	"github.com/open-dream-studios/dev-cms-sub001/internal/token"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/logger"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Log *slog.Logger

	Auth       *auth.Manager
	Audit      *audit.Service
	Tokens     *token.Issuer
	Router     *routing.Engine
	Lifecycle  *calls.StateMachine
	Terminator *calls.TerminationController
	Hub        *broadcast.Hub
	Presence   *presence.Registry

	// ValidateWebhook, when set, authenticates provider webhooks (request
	// signature checks). Unset means accept, for local development and
	// tests.
	ValidateWebhook func(r *http.Request) bool
}

type loginRequest struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	Role        string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.WorkspaceID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, workspace_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.WorkspaceID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// VoiceToken mints a provider access token for the caller's workspace.
//
// A workspace without telephony configured gets a 200 with an empty grant,
// not an error; the dialer UI renders itself disabled from that.
func (h Handlers) VoiceToken(c *gin.Context) {
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil || workspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}

	grant, err := h.Tokens.Issue(c.Request.Context(), workspaceID)
	if errors.Is(err, token.ErrInvalidWorkspaceID) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid workspace_id"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("voice token issuance failed", "workspace_id", workspaceID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	if h.Audit != nil && grant.Enabled() {
		// Best-effort; a failed audit write must not fail the grant.
		userID, _ := auth.UserID(c.Request.Context())
		role, _ := auth.Role(c.Request.Context())
		if err := h.Audit.LogTokenIssued(c.Request.Context(), workspaceID, userID, role, c.ClientIP(), grant.Identity); err != nil {
			logger.FromGin(c).Warn("audit write failed", "err", err)
		}
	}
	c.JSON(http.StatusOK, grant)
}

// TerminateCall force-ends the workspace's live call.
func (h Handlers) TerminateCall(c *gin.Context) {
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil || workspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}

	ac, err := h.Terminator.TerminateActive(c.Request.Context(), workspaceID)
	switch {
	case errors.Is(err, calls.ErrNoActiveCall):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no active call"})
	case errors.Is(err, calls.ErrNoCredentials):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "telephony not configured"})
	case err != nil:
		logger.FromGin(c).Error("call termination failed", "workspace_id", workspaceID, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "termination failed"})
	default:
		if h.Audit != nil {
			userID, _ := auth.UserID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			if err := h.Audit.LogTermination(c.Request.Context(), workspaceID, userID, role, c.ClientIP(), ac.CallSID); err != nil {
				logger.FromGin(c).Warn("audit write failed", "err", err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
