package calls

import (
	"context"
	"strings"
	"time"

	"github.com/open-dream-studios/dev-cms-sub001/internal/broadcast"
	"github.com/open-dream-studios/dev-cms-sub001/internal/directory"
	"github.com/open-dream-studios/dev-cms-sub001/internal/presence"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/logger"
)

// StateMachine interprets the provider's call-status webhook stream and
// maintains the single source of truth for which calls are live.
//
// Delivery is at-least-once and may be reordered across legs of the same
// call (a child's "completed" can race the parent's "answered"). Every
// transition here is therefore safe to apply repeatedly and out of order;
// only the canonical leg's terminal event ends a call.
type StateMachine struct {
	Directory directory.Store
	Presence  *presence.Registry
	Active    *ActiveCallRegistry
	Events    broadcast.Publisher

	// Now is injectable for deterministic tests.
	Now func() time.Time
}

func NewStateMachine(dir directory.Store, pres *presence.Registry, events broadcast.Publisher) *StateMachine {
	return &StateMachine{
		Directory: dir,
		Presence:  pres,
		Active:    NewActiveCallRegistry(),
		Events:    events,
		Now:       time.Now,
	}
}

// HandleStatus applies one status event. It never returns an error: webhook
// handlers must acknowledge the provider regardless of what happens here,
// and an unresolvable event is dropped, not failed.
func (m *StateMachine) HandleStatus(ctx context.Context, ev StatusEvent) {
	log := logger.From(ctx)

	workspaceID, ok := m.resolveWorkspace(ctx, ev)
	if !ok {
		// Nothing to broadcast to; ack and move on.
		log.Debug("call status for unresolvable workspace dropped",
			"leg_sid", ev.LegSID, "status", ev.Status)
		return
	}

	switch ClassifyStatus(ev.Status) {
	case StatusRinging:
		// Informational only; arrives once per leg and touches no state.
		m.Events.Publish(ctx, broadcast.Event{
			Type:        broadcast.EventRinging,
			WorkspaceID: workspaceID,
			CallSID:     ev.CanonicalSID(),
		})

	case StatusAnswered:
		sid := ev.CanonicalSID()
		answeredBy := AnsweredBy(ev)
		m.Active.Upsert(workspaceID, sid, answeredBy, m.now())
		m.Events.Publish(ctx, broadcast.Event{
			Type:        broadcast.EventActive,
			WorkspaceID: workspaceID,
			CallSID:     sid,
			AnsweredBy:  answeredBy,
		})

	case StatusTerminal:
		if ev.IsChildLeg() {
			// A dialed target finished while the caller's leg may still be
			// alive. The parent's own terminal event is authoritative.
			log.Debug("child leg finished, call stays live",
				"leg_sid", ev.LegSID, "parent_sid", ev.ParentSID, "status", ev.Status)
			return
		}
		sid := ev.CanonicalSID()
		m.Active.Remove(sid)
		m.Events.Publish(ctx, broadcast.Event{
			Type:         broadcast.EventEnded,
			WorkspaceID:  workspaceID,
			CallSID:      sid,
			RecordingURL: ev.RecordingURL,
		})

	default:
		log.Debug("unhandled call status", "leg_sid", ev.LegSID, "status", ev.Status)
	}
}

// resolveWorkspace finds the owning workspace of an event, in priority order:
// the called phone number, then the called client identity, then the caller's
// number. Events that resolve nowhere are dropped by the caller.
func (m *StateMachine) resolveWorkspace(ctx context.Context, ev StatusEvent) (string, bool) {
	called := ev.Called
	if called == "" {
		called = ev.To
	}

	if called != "" && !strings.HasPrefix(called, clientPrefix) {
		if wid, err := m.Directory.ResolveWorkspace(ctx, called); err == nil {
			return wid, true
		}
	}
	if id, ok := strings.CutPrefix(called, clientPrefix); ok && id != "" {
		if wid, ok := m.Presence.WorkspaceFor(id); ok {
			return wid, true
		}
	}
	if ev.From != "" {
		if wid, err := m.Directory.ResolveWorkspace(ctx, ev.From); err == nil {
			return wid, true
		}
	}
	return "", false
}

func (m *StateMachine) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
