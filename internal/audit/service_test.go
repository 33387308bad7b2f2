package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAppend_FillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	err := svc.LogTermination(context.Background(), "ws-1", "u-1", "owner", "203.0.113.9", "CA-parent")
	if err != nil {
		t.Fatalf("LogTermination: %v", err)
	}

	events := repo.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.ID == "" {
		t.Fatal("ID not generated")
	}
	if !e.CreatedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("CreatedAt = %v", e.CreatedAt)
	}
	if e.Type != EventTypeCallTerminated || e.CallSID != "CA-parent" {
		t.Fatalf("event = %+v", e)
	}
}

func TestAppend_RequiresWorkspaceAndType(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if err := svc.Append(context.Background(), Event{Type: EventTypeTokenIssued}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("err = %v, want ErrInvalidEvent", err)
	}
	if err := svc.Append(context.Background(), Event{WorkspaceID: "ws-1"}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("err = %v, want ErrInvalidEvent", err)
	}
}

func TestLogTokenIssued(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)

	if err := svc.LogTokenIssued(context.Background(), "ws-1", "u-1", "agent", "", "client-abc"); err != nil {
		t.Fatalf("LogTokenIssued: %v", err)
	}
	events := repo.Events()
	if len(events) != 1 || events[0].Identity != "client-abc" || events[0].Type != EventTypeTokenIssued {
		t.Fatalf("events = %+v", events)
	}
}
