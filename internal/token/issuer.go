package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/open-dream-studios/dev-cms-sub001/internal/directory"
	"github.com/open-dream-studios/dev-cms-sub001/internal/telephony"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/logger"
)

// ErrInvalidWorkspaceID means the caller supplied a malformed workspace id.
var ErrInvalidWorkspaceID = errors.New("token: invalid workspace id")

// Grant is what a browser softphone needs to register with the voice
// provider. A workspace without telephony configured receives an empty
// grant rather than an error, so clients can render a disabled dialer.
type Grant struct {
	Token             string   `json:"token"`
	Identity          string   `json:"identity"`
	ForwardingNumbers []string `json:"forwarding_numbers"`
}

// Enabled reports whether the grant carries a usable provider token.
func (g Grant) Enabled() bool { return g.Token != "" }

// Issuer mints short-lived voice access tokens for workspace members.
type Issuer struct {
	Directory directory.Store
	Provider  telephony.TelephonyProvider
	TTL       time.Duration

	// NewIdentity generates the per-session client identity. Overridable
	// in tests.
	NewIdentity func() string
}

func NewIssuer(dir directory.Store, provider telephony.TelephonyProvider, ttl time.Duration) *Issuer {
	return &Issuer{
		Directory:   dir,
		Provider:    provider,
		TTL:         ttl,
		NewIdentity: defaultIdentity,
	}
}

func defaultIdentity() string {
	return "client-" + uuid.NewString()
}

// Issue resolves the workspace's provider credentials and mints a token
// bound to a fresh client identity.
func (i *Issuer) Issue(ctx context.Context, workspaceID string) (Grant, error) {
	if !validWorkspaceID(workspaceID) {
		return Grant{}, ErrInvalidWorkspaceID
	}
	log := logger.From(ctx)

	creds, err := i.Directory.Credentials(ctx, workspaceID)
	if errors.Is(err, directory.ErrNotFound) {
		log.Info("voice token requested for workspace without telephony", "workspace_id", workspaceID)
		return Grant{ForwardingNumbers: []string{}}, nil
	}
	if err != nil {
		return Grant{}, fmt.Errorf("lookup credentials: %w", err)
	}
	if !creds.Complete() {
		log.Warn("workspace telephony credentials incomplete", "workspace_id", workspaceID)
		return Grant{ForwardingNumbers: []string{}}, nil
	}

	identity := i.NewIdentity()
	result, err := i.Provider.GenerateToken(ctx, telephony.TokenRequest{
		Credentials: creds,
		Identity:    identity,
		TTL:         i.TTL,
	})
	if err != nil {
		return Grant{}, fmt.Errorf("generate voice token: %w", err)
	}

	numbers, err := i.Directory.ForwardingNumbers(ctx, workspaceID)
	if err != nil {
		// The token is the point of this call; a numbers hiccup should
		// not fail it.
		log.Warn("forwarding numbers lookup failed", "workspace_id", workspaceID, "err", err)
		numbers = nil
	}
	if numbers == nil {
		numbers = []string{}
	}

	return Grant{
		Token:             result.Token,
		Identity:          identity,
		ForwardingNumbers: numbers,
	}, nil
}

func validWorkspaceID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
