package routing

import (
	"context"
	"errors"
	"sort"

	"github.com/open-dream-studios/dev-cms-sub001/internal/directory"
	"github.com/open-dream-studios/dev-cms-sub001/internal/presence"
	"github.com/open-dream-studios/dev-cms-sub001/internal/telephony"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/logger"
)

const (
	defaultAnnouncement = "This call may be recorded for quality and training purposes."
	unavailableMessage  = "The number you have dialed is not in service. Goodbye."
)

// Engine builds the dial plan for inbound PSTN calls.
//
// It decides WHO should be rung: every online browser softphone of the
// owning workspace, plus every configured forwarding number, as one
// simultaneous-ring group. Rendering the plan into a provider document is
// the telephony adapter's job.
type Engine struct {
	Directory directory.Store
	Presence  *presence.Registry
	Provider  telephony.TelephonyProvider

	// Callback endpoints the provider reports back to.
	StatusCallbackURL string
	MediaStreamURL    string

	AnnouncementText   string
	DialTimeoutSeconds int
}

// InboundCall is a new parent-leg call hitting one of our numbers.
type InboundCall struct {
	CallSID string
	From    string
	To      string
}

// RouteInboundCall returns the call-control document for the call.
//
// It never fails outward: an unresolvable number, a directory hiccup, or a
// render problem all degrade to a polite unavailable response, because the
// webhook must be answered either way.
func (e *Engine) RouteInboundCall(ctx context.Context, call InboundCall) string {
	log := logger.From(ctx)

	workspaceID, err := e.Directory.ResolveWorkspace(ctx, call.To)
	if errors.Is(err, directory.ErrNotFound) {
		log.Info("inbound call for unconfigured number", "to", call.To, "call_sid", call.CallSID)
		return e.Provider.UnavailableDocument(unavailableMessage)
	}
	if err != nil {
		log.Error("workspace resolution failed", "to", call.To, "err", err)
		return e.Provider.UnavailableDocument(unavailableMessage)
	}

	identities := e.Presence.Identities(workspaceID)
	sort.Strings(identities)

	numbers, err := e.Directory.ForwardingNumbers(ctx, workspaceID)
	if err != nil {
		// Ring the browsers anyway.
		log.Warn("forwarding numbers lookup failed", "workspace_id", workspaceID, "err", err)
		numbers = nil
	}

	if len(identities) == 0 && len(numbers) == 0 {
		// Accepted edge case: the group rings empty and the caller hears
		// ringback until timeout.
		log.Info("inbound call with no ring targets", "workspace_id", workspaceID, "call_sid", call.CallSID)
	}

	announcement := e.AnnouncementText
	if announcement == "" {
		announcement = defaultAnnouncement
	}

	doc, err := e.Provider.DialPlanDocument(ctx, telephony.DialPlan{
		WorkspaceID:       workspaceID,
		From:              call.From,
		To:                call.To,
		AnnouncementText:  announcement,
		MediaStreamURL:    e.MediaStreamURL,
		StatusCallbackURL: e.StatusCallbackURL,
		TimeoutSeconds:    e.DialTimeoutSeconds,
		ClientIdentities:  identities,
		ForwardingNumbers: numbers,
	})
	if err != nil {
		log.Error("dial plan render failed", "workspace_id", workspaceID, "err", err)
		return e.Provider.UnavailableDocument(unavailableMessage)
	}

	log.Info("inbound call routed",
		"workspace_id", workspaceID,
		"call_sid", call.CallSID,
		"clients", len(identities),
		"numbers", len(numbers),
	)
	return doc
}
