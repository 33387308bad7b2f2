package telephony

import (
	"context"
	"sync"
	"time"
)

// FakeProvider is an in-memory TelephonyProvider for tests.
// It records every request and returns deterministic documents.
type FakeProvider struct {
	mu sync.Mutex

	TokenErr     error
	TerminateErr error

	TokenRequests     []TokenRequest
	DialPlans         []DialPlan
	TerminateRequests []TerminateRequest
}

func NewFakeProvider() *FakeProvider { return &FakeProvider{} }

func (f *FakeProvider) Name() string { return "fake" }

func (f *FakeProvider) GenerateToken(ctx context.Context, req TokenRequest) (TokenResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TokenErr != nil {
		return TokenResult{}, f.TokenErr
	}
	f.TokenRequests = append(f.TokenRequests, req)
	return TokenResult{Token: "fake-token-" + req.Identity, ExpiresAt: time.Now().Add(req.TTL)}, nil
}

func (f *FakeProvider) DialPlanDocument(ctx context.Context, plan DialPlan) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DialPlans = append(f.DialPlans, plan)
	// Real TwiML so HTTP-level tests can assert on the document.
	return renderDialPlan(plan)
}

func (f *FakeProvider) UnavailableDocument(message string) string {
	return renderUnavailable(message)
}

func (f *FakeProvider) TerminateCall(ctx context.Context, req TerminateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TerminateErr != nil {
		return f.TerminateErr
	}
	f.TerminateRequests = append(f.TerminateRequests, req)
	return nil
}

func (f *FakeProvider) LastDialPlan() (DialPlan, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.DialPlans) == 0 {
		return DialPlan{}, false
	}
	return f.DialPlans[len(f.DialPlans)-1], true
}
