package calls

import (
	"testing"
	"time"
)

func TestActiveCallRegistry_UpsertIsIdempotent(t *testing.T) {
	r := NewActiveCallRegistry()
	t0 := time.Unix(1700000000, 0)

	first := r.Upsert("ws-1", "CA1", "client-a", t0)
	if first.StartedAt != t0 {
		t.Fatalf("unexpected start time: %v", first.StartedAt)
	}

	// A redelivered answered event refreshes AnsweredBy but keeps StartedAt.
	second := r.Upsert("ws-1", "CA1", "+15551234567", t0.Add(5*time.Second))
	if second.StartedAt != t0 {
		t.Fatalf("start time must be preserved, got %v", second.StartedAt)
	}
	if second.AnsweredBy != "+15551234567" {
		t.Fatalf("answered_by must refresh, got %q", second.AnsweredBy)
	}

	if got, ok := r.Get("CA1"); !ok || got.AnsweredBy != "+15551234567" {
		t.Fatalf("unexpected record: %+v ok=%v", got, ok)
	}
}

func TestActiveCallRegistry_RemoveAbsentIsNoop(t *testing.T) {
	r := NewActiveCallRegistry()
	if _, ok := r.Remove("CA1"); ok {
		t.Fatalf("expected absent")
	}
}

func TestActiveCallRegistry_WorkspaceMayHoldConcurrentCalls(t *testing.T) {
	r := NewActiveCallRegistry()
	t0 := time.Unix(1700000000, 0)
	r.Upsert("ws-1", "CA1", "client-a", t0)
	r.Upsert("ws-1", "CA2", "client-b", t0.Add(time.Minute))

	if _, ok := r.Get("CA1"); !ok {
		t.Fatalf("expected CA1 live")
	}
	if _, ok := r.Get("CA2"); !ok {
		t.Fatalf("expected CA2 live")
	}
}

func TestActiveCallRegistry_LatestForWorkspace(t *testing.T) {
	r := NewActiveCallRegistry()
	t0 := time.Unix(1700000000, 0)
	r.Upsert("ws-1", "CA1", "client-a", t0)
	r.Upsert("ws-1", "CA2", "client-b", t0.Add(time.Minute))
	r.Upsert("ws-2", "CA3", "client-c", t0.Add(time.Hour))

	ac, ok := r.LatestForWorkspace("ws-1")
	if !ok || ac.CallSID != "CA2" {
		t.Fatalf("expected CA2, got %+v ok=%v", ac, ok)
	}
	if _, ok := r.LatestForWorkspace("ws-9"); ok {
		t.Fatalf("expected no call for unknown workspace")
	}
}
