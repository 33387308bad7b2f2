package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/open-dream-studios/dev-cms-sub001/internal/auth"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsPongTimeout  = 60 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser softphones live on the CRM's own origin, which is not this
	// API's origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// BearerFromQuery lets WebSocket clients authenticate via an access_token
// query parameter, since browsers cannot set headers on a WebSocket
// handshake. It rewrites the parameter into the Authorization header the
// auth middleware expects.
func BearerFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if tok := strings.TrimSpace(c.Query("access_token")); tok != "" {
				c.Request.Header.Set("Authorization", "Bearer "+tok)
			}
		}
		c.Next()
	}
}

// VoiceEvents upgrades to a WebSocket and streams the workspace's call-state
// events to the client until it disconnects.
//
// The connection doubles as presence: the identity registered here is what
// makes this client part of the workspace's ring group, so registration
// lasts exactly as long as the socket.
func (h Handlers) VoiceEvents(c *gin.Context) {
	log := logger.FromGin(c)

	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil || workspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	identity := strings.TrimSpace(c.Query("identity"))
	if identity == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "identity required"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Warn("websocket upgrade failed", "err", err)
		return
	}

	h.Presence.Register(workspaceID, identity)
	sub := h.Hub.Subscribe(workspaceID)
	log.Info("voice client connected", "workspace_id", workspaceID, "identity", identity)

	defer func() {
		sub.Close()
		h.Presence.Unregister(workspaceID, identity)
		conn.Close()
		log.Info("voice client disconnected", "workspace_id", workspaceID, "identity", identity)
	}()

	// Reader detects disconnects and answers pings; clients have nothing
	// to say on this channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case payload, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
