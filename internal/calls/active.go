package calls

import (
	"sync"
	"time"
)

// ActiveCall is the authoritative "this call is currently live" record,
// keyed by the canonical SID.
//
// Invariant: at most one ActiveCall per canonical SID. A workspace may hold
// several concurrent ActiveCalls, one per concurrent call.
type ActiveCall struct {
	WorkspaceID string
	CallSID     string
	AnsweredBy  string
	StartedAt   time.Time
}

// ActiveCallRegistry owns the live-call table.
//
// Webhook handlers hit it concurrently; all operations take the registry
// lock and do nothing slow under it. Outbound provider calls never run
// while the lock is held.
type ActiveCallRegistry struct {
	mu    sync.Mutex
	calls map[string]ActiveCall
}

func NewActiveCallRegistry() *ActiveCallRegistry {
	return &ActiveCallRegistry{calls: map[string]ActiveCall{}}
}

// Upsert records the call as live. Idempotent: a repeated answered event for
// the same canonical SID refreshes AnsweredBy but keeps the original start
// time.
func (r *ActiveCallRegistry) Upsert(workspaceID, callSID, answeredBy string, now time.Time) ActiveCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	ac, ok := r.calls[callSID]
	if !ok {
		ac = ActiveCall{WorkspaceID: workspaceID, CallSID: callSID, StartedAt: now}
	}
	ac.AnsweredBy = answeredBy
	r.calls[callSID] = ac
	return ac
}

// Remove deletes the record, returning it if present.
// Removing an absent SID is a no-op (redeliveries hit this path).
func (r *ActiveCallRegistry) Remove(callSID string) (ActiveCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ac, ok := r.calls[callSID]
	if ok {
		delete(r.calls, callSID)
	}
	return ac, ok
}

func (r *ActiveCallRegistry) Get(callSID string) (ActiveCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ac, ok := r.calls[callSID]
	return ac, ok
}

// LatestForWorkspace returns the workspace's most recently answered live
// call, used by operator-initiated termination.
func (r *ActiveCallRegistry) LatestForWorkspace(workspaceID string) (ActiveCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest ActiveCall
	found := false
	for _, ac := range r.calls {
		if ac.WorkspaceID != workspaceID {
			continue
		}
		if !found || ac.StartedAt.After(latest.StartedAt) {
			latest = ac
			found = true
		}
	}
	return latest, found
}
