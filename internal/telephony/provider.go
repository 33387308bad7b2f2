package telephony

import (
	"context"
	"time"

	"github.com/open-dream-studios/dev-cms-sub001/internal/directory"
)

// TelephonyProvider defines the provider-agnostic interface used by business logic.
//
// Rules:
//   - No provider SDK/REST calls outside telephony adapters.
//   - Requests carry explicit workspace credentials; the adapter holds no
//     account state of its own, so one adapter serves every workspace.
//   - Routing and lifecycle logic must be testable against FakeProvider with
//     no network access.
type TelephonyProvider interface {
	Name() string

	// GenerateToken mints a short-lived, scoped access token for a browser
	// softphone identity.
	GenerateToken(ctx context.Context, req TokenRequest) (TokenResult, error)

	// DialPlanDocument renders the call-control document for an inbound call:
	// announcement, optional live-audio tap, and the simultaneous-ring group.
	DialPlanDocument(ctx context.Context, plan DialPlan) (string, error)

	// UnavailableDocument renders a polite "not in service" response that
	// ends the call without dialing anyone.
	UnavailableDocument(message string) string

	// TerminateCall force-ends a call leg at the provider. Terminating a
	// parent leg cascades to every child leg of its dial group.
	TerminateCall(ctx context.Context, req TerminateRequest) error
}

// TokenRequest asks for a browser softphone token.
//
// The token is scoped to the workspace's signaling application and to
// receiving inbound calls; it grants no outbound capability beyond what the
// application itself allows.
type TokenRequest struct {
	Credentials directory.Credentials
	Identity    string
	TTL         time.Duration
}

type TokenResult struct {
	Token     string
	ExpiresAt time.Time
}

// DialPlan describes who should be rung for an inbound call.
//
// ClientIdentities and ForwardingNumbers together form a simultaneous-ring
// group: the first target to answer wins, audio bridges only after answer,
// and the group is recorded from the moment of answer. An empty group is
// valid; the caller hears ringback until the provider times the call out.
type DialPlan struct {
	WorkspaceID string
	From        string
	To          string

	AnnouncementText string

	// MediaStreamURL, when set, opens a best-effort live-audio tap in
	// parallel with the dial. Workspace, caller and dialee ride along as
	// stream parameters for downstream consumers.
	MediaStreamURL string

	// StatusCallbackURL receives per-leg lifecycle events (initiated,
	// ringing, answered, completed) for every target in the group, and the
	// parent leg's terminal event via the dial action.
	StatusCallbackURL string

	TimeoutSeconds int

	ClientIdentities  []string
	ForwardingNumbers []string
}

type TerminateRequest struct {
	Credentials directory.Credentials
	CallSID     string
}
