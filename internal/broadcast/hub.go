package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// subscriberBuffer bounds how far a slow connection may lag before events
// are dropped for it.
const subscriberBuffer = 32

// Hub fans call-state events out to the subscribers of a workspace.
//
// The hub is transport-agnostic: each subscriber is a buffered channel of
// marshaled events, and the HTTP layer pumps it into a websocket. Order is
// preserved per subscriber; a subscriber that cannot keep up loses events
// rather than stalling the webhook path.
type Hub struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:  log,
		subs: map[string]map[*Subscriber]struct{}{},
	}
}

// Subscriber receives the marshaled events of one workspace connection.
type Subscriber struct {
	hub         *Hub
	workspaceID string
	ch          chan []byte

	closeOnce sync.Once
}

// Events is the stream of marshaled Event payloads.
// The channel is closed when the subscriber is closed.
func (s *Subscriber) Events() <-chan []byte { return s.ch }

// Close detaches the subscriber from the hub.
// Safe to call multiple times.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// Subscribe attaches a new subscriber for workspaceID.
func (h *Hub) Subscribe(workspaceID string) *Subscriber {
	s := &Subscriber{
		hub:         h,
		workspaceID: workspaceID,
		ch:          make(chan []byte, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[workspaceID]
	if !ok {
		set = map[*Subscriber]struct{}{}
		h.subs[workspaceID] = set
	}
	set[s] = struct{}{}
	return s
}

func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.workspaceID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.workspaceID)
		}
	}
}

// Publish delivers ev to every subscriber of its workspace.
// Cross-workspace delivery never happens.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if ev.WorkspaceID == "" {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("call event marshal failed", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.WorkspaceID] {
		select {
		case s.ch <- payload:
		default:
			// Slow consumer: drop rather than block the webhook path.
			h.log.Warn("call event dropped for slow subscriber",
				"workspace_id", ev.WorkspaceID, "type", string(ev.Type))
		}
	}
}
