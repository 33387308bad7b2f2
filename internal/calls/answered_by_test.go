package calls

import "testing"

func TestAnsweredBy_StripsClientPrefix(t *testing.T) {
	got := AnsweredBy(StatusEvent{Called: "client:client-abc"})
	if got != "client-abc" {
		t.Fatalf("expected stripped identity, got %q", got)
	}
}

func TestAnsweredBy_ClientPrefixOnToField(t *testing.T) {
	got := AnsweredBy(StatusEvent{To: "client:client-abc"})
	if got != "client-abc" {
		t.Fatalf("expected stripped identity, got %q", got)
	}
}

func TestAnsweredBy_RawNumberPassesThrough(t *testing.T) {
	got := AnsweredBy(StatusEvent{Called: "+15551234567"})
	if got != "+15551234567" {
		t.Fatalf("expected raw number unchanged, got %q", got)
	}
}

func TestAnsweredBy_CalledTakesPrecedenceOverTo(t *testing.T) {
	got := AnsweredBy(StatusEvent{Called: "+15551234567", To: "+15550000000"})
	if got != "+15551234567" {
		t.Fatalf("expected called field, got %q", got)
	}
}

func TestAnsweredBy_FallsBackToTo(t *testing.T) {
	got := AnsweredBy(StatusEvent{To: "+15550000000"})
	if got != "+15550000000" {
		t.Fatalf("expected to field, got %q", got)
	}
}

func TestAnsweredBy_EmptyEvent(t *testing.T) {
	if got := AnsweredBy(StatusEvent{}); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
