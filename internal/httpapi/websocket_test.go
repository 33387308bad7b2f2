package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/open-dream-studios/dev-cms-sub001/internal/broadcast"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestVoiceEvents_StreamsEventsAndTracksPresence(t *testing.T) {
	f := newFixture()
	r := gin.New()
	r.GET("/v1/voice/events", identityAs("u-1", "ws-1", "agent"), f.handlers.VoiceEvents)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/voice/events?identity=B1"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	resp.Body.Close()

	// The connection is the ring-group registration.
	waitFor(t, func() bool {
		ids := f.presence.Identities("ws-1")
		return len(ids) == 1 && ids[0] == "B1"
	})

	f.hub.Publish(context.Background(), broadcast.Event{
		Type:        broadcast.EventRinging,
		WorkspaceID: "ws-1",
		CallSID:     "CA-1",
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev broadcast.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != broadcast.EventRinging || ev.CallSID != "CA-1" {
		t.Fatalf("event = %+v", ev)
	}

	// Closing the socket takes the client out of the ring group.
	conn.Close()
	waitFor(t, func() bool { return len(f.presence.Identities("ws-1")) == 0 })
}

func TestVoiceEvents_IdentityRequired(t *testing.T) {
	f := newFixture()
	r := gin.New()
	r.GET("/v1/voice/events", identityAs("u-1", "ws-1", "agent"), f.handlers.VoiceEvents)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/voice/events", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestVoiceEvents_WorkspaceRequired(t *testing.T) {
	f := newFixture()
	r := gin.New()
	r.GET("/v1/voice/events", f.handlers.VoiceEvents)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/voice/events?identity=B1", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestBearerFromQuery_RewritesHeader(t *testing.T) {
	r := gin.New()
	r.GET("/ws", BearerFromQuery(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetHeader("Authorization"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?access_token=tok-123", nil))
	if w.Body.String() != "Bearer tok-123" {
		t.Fatalf("header = %q", w.Body.String())
	}

	// An existing header wins over the query parameter.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws?access_token=tok-123", nil)
	req.Header.Set("Authorization", "Bearer original")
	r.ServeHTTP(w, req)
	if w.Body.String() != "Bearer original" {
		t.Fatalf("header = %q", w.Body.String())
	}
}
