package telephony

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTwilioAPIBaseURL = "https://api.twilio.com"

// TwilioProvider implements TelephonyProvider against Twilio Programmable Voice.
//
// Tokens are Twilio access tokens: HS256 JWTs signed with the workspace's API
// key secret, carrying a voice grant scoped to the workspace's TwiML app.
// Call control is TwiML; termination is a REST call against the parent leg.
type TwilioProvider struct {
	// APIBaseURL overrides the REST endpoint, for tests.
	APIBaseURL string

	HTTPClient *http.Client

	Now func() time.Time
}

func NewTwilioProvider() *TwilioProvider {
	return &TwilioProvider{
		APIBaseURL: defaultTwilioAPIBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Now:        time.Now,
	}
}

func (p *TwilioProvider) Name() string { return "twilio" }

func (p *TwilioProvider) GenerateToken(ctx context.Context, req TokenRequest) (TokenResult, error) {
	if !req.Credentials.Complete() {
		return TokenResult{}, errors.New("telephony: incomplete twilio credentials")
	}
	if req.Identity == "" {
		return TokenResult{}, errors.New("telephony: identity required")
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := p.now()
	exp := now.Add(ttl)

	// Voice grant: receive inbound calls; outbound only through the
	// workspace's TwiML application.
	grants := map[string]any{
		"identity": req.Identity,
		"voice": map[string]any{
			"incoming": map[string]any{"allow": true},
			"outgoing": map[string]any{"application_sid": req.Credentials.AppSID},
		},
	}

	claims := jwt.MapClaims{
		"jti":    fmt.Sprintf("%s-%d", req.Credentials.APIKeySID, now.Unix()),
		"iss":    req.Credentials.APIKeySID,
		"sub":    req.Credentials.AccountSID,
		"iat":    now.Unix(),
		"nbf":    now.Unix(),
		"exp":    exp.Unix(),
		"grants": grants,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// Twilio requires the cty header on access tokens.
	t.Header["cty"] = "twilio-fv=1"

	signed, err := t.SignedString([]byte(req.Credentials.APIKeySecret))
	if err != nil {
		return TokenResult{}, fmt.Errorf("telephony: sign access token: %w", err)
	}
	return TokenResult{Token: signed, ExpiresAt: exp}, nil
}

func (p *TwilioProvider) DialPlanDocument(ctx context.Context, plan DialPlan) (string, error) {
	return renderDialPlan(plan)
}

func (p *TwilioProvider) UnavailableDocument(message string) string {
	return renderUnavailable(message)
}

// TerminateCall sets the leg's status to completed via the Twilio REST API.
// Twilio cascades the hangup to every child leg of the dial group.
func (p *TwilioProvider) TerminateCall(ctx context.Context, req TerminateRequest) error {
	if !req.Credentials.Complete() {
		return errors.New("telephony: incomplete twilio credentials")
	}
	if req.CallSID == "" {
		return errors.New("telephony: call sid required")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls/%s.json",
		strings.TrimRight(p.baseURL(), "/"),
		url.PathEscape(req.Credentials.AccountSID),
		url.PathEscape(req.CallSID),
	)

	form := url.Values{"Status": {"completed"}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telephony: build terminate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(req.Credentials.APIKeySID, req.Credentials.APIKeySecret)

	resp, err := p.client().Do(httpReq)
	if err != nil {
		return fmt.Errorf("telephony: terminate call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telephony: terminate call rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (p *TwilioProvider) baseURL() string {
	if p.APIBaseURL == "" {
		return defaultTwilioAPIBaseURL
	}
	return p.APIBaseURL
}

func (p *TwilioProvider) client() *http.Client {
	if p.HTTPClient == nil {
		return http.DefaultClient
	}
	return p.HTTPClient
}

func (p *TwilioProvider) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
