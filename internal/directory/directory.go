package directory

import (
	"context"
	"errors"
)

// Store is the number directory: it maps dialed numbers to the owning
// workspace, and workspaces to their telephony configuration.
//
// Pure lookup, no side effects. "Not found" is a normal outcome (an
// unconfigured number, a workspace without telephony enabled) and is reported
// via ErrNotFound so callers can degrade gracefully instead of failing.
//
// Multi-tenant invariant: every lookup is scoped to exactly one workspace.
type Store interface {
	// ResolveWorkspace maps a dialed E.164 number to the workspace that owns it.
	ResolveWorkspace(ctx context.Context, dialedNumber string) (string, error)

	// Credentials returns the workspace's provider credentials.
	Credentials(ctx context.Context, workspaceID string) (Credentials, error)

	// ForwardingNumbers returns the workspace's configured forwarding numbers.
	// An empty slice is a valid result.
	ForwardingNumbers(ctx context.Context, workspaceID string) ([]string, error)
}

var ErrNotFound = errors.New("directory: not found")

// Credentials is the per-workspace provider account configuration.
// Configured by the workspace admin through the settings UI; read-only here.
type Credentials struct {
	AccountSID   string
	APIKeySID    string
	APIKeySecret string

	// AppSID identifies the provider-side signaling application (TwiML app)
	// browser softphones connect through.
	AppSID string
}

// Complete reports whether the workspace has a usable telephony setup.
// Partial configuration is treated the same as none.
func (c Credentials) Complete() bool {
	return c.AccountSID != "" && c.APIKeySID != "" && c.APIKeySecret != "" && c.AppSID != ""
}
