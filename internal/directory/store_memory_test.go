package directory

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_ResolveWorkspace(t *testing.T) {
	s := NewMemoryStore()
	s.AddNumber("+15557654321", "ws-1")

	wid, err := s.ResolveWorkspace(context.Background(), "+15557654321")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if wid != "ws-1" {
		t.Fatalf("expected ws-1, got %q", wid)
	}
}

func TestMemoryStore_UnknownNumberIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.ResolveWorkspace(context.Background(), "+15550000000")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_CredentialsNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Credentials(context.Background(), "ws-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ForwardingNumbersEmptyIsValid(t *testing.T) {
	s := NewMemoryStore()
	nums, err := s.ForwardingNumbers(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(nums) != 0 {
		t.Fatalf("expected empty, got %v", nums)
	}
}

func TestCredentials_Complete(t *testing.T) {
	c := Credentials{AccountSID: "AC1", APIKeySID: "SK1", APIKeySecret: "s", AppSID: "AP1"}
	if !c.Complete() {
		t.Fatalf("expected complete")
	}
	c.AppSID = ""
	if c.Complete() {
		t.Fatalf("partial config must not count as complete")
	}
}
