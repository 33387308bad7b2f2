package broadcast

import "context"

// EventType is the interpreted call-state notification kind.
type EventType string

const (
	EventRinging EventType = "ringing"
	EventActive  EventType = "active"
	EventEnded   EventType = "ended"
)

// Event is a workspace-scoped call-state change pushed to connected browsers.
// Transient, never persisted; a missed event is corrected by the receiver's
// next reconnect.
type Event struct {
	Type        EventType `json:"type"`
	WorkspaceID string    `json:"workspace_id"`
	CallSID     string    `json:"call_sid"`

	AnsweredBy   string `json:"answered_by,omitempty"`
	RecordingURL string `json:"recording_url,omitempty"`
}

// Publisher fans an event out to every live connection of the event's
// workspace. Delivery is best-effort and fire-and-forget; implementations
// must never block the caller on a slow receiver.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}
