package calls

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-dream-studios/dev-cms-sub001/internal/directory"
	"github.com/open-dream-studios/dev-cms-sub001/internal/telephony"
)

var (
	ErrNoActiveCall  = errors.New("calls: no active call")
	ErrNoCredentials = errors.New("calls: workspace has no telephony credentials")
)

// TerminationController lets an operator forcibly end the workspace's live
// call. It hangs up only the canonical (parent) leg; the provider cascades
// the hangup to every child leg of the dial group.
type TerminationController struct {
	Directory directory.Store
	Active    *ActiveCallRegistry
	Provider  telephony.TelephonyProvider
}

// TerminateActive ends the workspace's most recent live call and returns it.
//
// The registry entry is NOT removed here: the provider's terminal status
// webhook for the parent leg is the authoritative end of the call and will
// clear it through the state machine.
func (c *TerminationController) TerminateActive(ctx context.Context, workspaceID string) (ActiveCall, error) {
	ac, ok := c.Active.LatestForWorkspace(workspaceID)
	if !ok {
		return ActiveCall{}, ErrNoActiveCall
	}

	creds, err := c.Directory.Credentials(ctx, workspaceID)
	if errors.Is(err, directory.ErrNotFound) {
		return ActiveCall{}, ErrNoCredentials
	}
	if err != nil {
		return ActiveCall{}, fmt.Errorf("calls: credentials lookup: %w", err)
	}
	if !creds.Complete() {
		return ActiveCall{}, ErrNoCredentials
	}

	// No registry lock is held across this outbound call.
	if err := c.Provider.TerminateCall(ctx, telephony.TerminateRequest{
		Credentials: creds,
		CallSID:     ac.CallSID,
	}); err != nil {
		return ActiveCall{}, fmt.Errorf("calls: terminate %s: %w", ac.CallSID, err)
	}
	return ac, nil
}
