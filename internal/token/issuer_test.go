package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/open-dream-studios/dev-cms-sub001/internal/directory"
	"github.com/open-dream-studios/dev-cms-sub001/internal/telephony"
)

func completeCredentials() directory.Credentials {
	return directory.Credentials{
		AccountSID:   "AC0123456789abcdef",
		APIKeySID:    "SK0123456789abcdef",
		APIKeySecret: "secret",
		AppSID:       "AP0123456789abcdef",
	}
}

func newTestIssuer() (*Issuer, *directory.MemoryStore, *telephony.FakeProvider) {
	dir := directory.NewMemoryStore()
	provider := telephony.NewFakeProvider()
	issuer := NewIssuer(dir, provider, time.Hour)
	issuer.NewIdentity = func() string { return "client-fixed" }
	return issuer, dir, provider
}

func TestIssue_MintsTokenWithFreshIdentity(t *testing.T) {
	issuer, dir, provider := newTestIssuer()
	dir.SetCredentials("ws-1", completeCredentials())
	dir.SetForwardingNumbers("ws-1", []string{"+15551234567"})

	grant, err := issuer.Issue(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !grant.Enabled() {
		t.Fatal("grant should be enabled")
	}
	if grant.Identity != "client-fixed" {
		t.Fatalf("identity = %q", grant.Identity)
	}
	if len(grant.ForwardingNumbers) != 1 || grant.ForwardingNumbers[0] != "+15551234567" {
		t.Fatalf("forwarding numbers = %v", grant.ForwardingNumbers)
	}
	if len(provider.TokenRequests) != 1 {
		t.Fatalf("token requests = %d, want 1", len(provider.TokenRequests))
	}
	req := provider.TokenRequests[0]
	if req.Identity != "client-fixed" || req.TTL != time.Hour {
		t.Fatalf("token request = %+v", req)
	}
	if req.Credentials.AccountSID != "AC0123456789abcdef" {
		t.Fatalf("credentials = %+v", req.Credentials)
	}
}

func TestIssue_DefaultIdentitiesAreUnique(t *testing.T) {
	issuer, dir, _ := newTestIssuer()
	issuer.NewIdentity = defaultIdentity
	dir.SetCredentials("ws-1", completeCredentials())

	a, err := issuer.Issue(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	b, err := issuer.Issue(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if a.Identity == b.Identity {
		t.Fatalf("identities collide: %q", a.Identity)
	}
}

func TestIssue_WorkspaceWithoutTelephonyGetsEmptyGrant(t *testing.T) {
	issuer, _, provider := newTestIssuer()

	grant, err := issuer.Issue(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if grant.Enabled() {
		t.Fatal("grant should be disabled")
	}
	if grant.ForwardingNumbers == nil {
		t.Fatal("forwarding numbers should be an empty slice, not nil")
	}
	if len(provider.TokenRequests) != 0 {
		t.Fatal("no token should be minted")
	}
}

func TestIssue_IncompleteCredentialsGetEmptyGrant(t *testing.T) {
	issuer, dir, provider := newTestIssuer()
	creds := completeCredentials()
	creds.APIKeySecret = ""
	dir.SetCredentials("ws-1", creds)

	grant, err := issuer.Issue(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if grant.Enabled() {
		t.Fatal("grant should be disabled")
	}
	if len(provider.TokenRequests) != 0 {
		t.Fatal("no token should be minted")
	}
}

func TestIssue_InvalidWorkspaceID(t *testing.T) {
	issuer, _, _ := newTestIssuer()

	for _, id := range []string{"", "ws 1", "ws/1", "ws\x001"} {
		if _, err := issuer.Issue(context.Background(), id); !errors.Is(err, ErrInvalidWorkspaceID) {
			t.Fatalf("Issue(%q) err = %v, want ErrInvalidWorkspaceID", id, err)
		}
	}
}

func TestIssue_ProviderFailureIsSurfaced(t *testing.T) {
	issuer, dir, provider := newTestIssuer()
	dir.SetCredentials("ws-1", completeCredentials())
	provider.TokenErr = errors.New("signing broke")

	if _, err := issuer.Issue(context.Background(), "ws-1"); err == nil {
		t.Fatal("expected error from provider failure")
	}
}
