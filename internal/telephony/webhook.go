package telephony

import (
	"errors"
	"net/http"
	"strings"
)

// Webhook form parsers. Twilio sends application/x-www-form-urlencoded.
//
// Keep them minimal and provider-adapter-only; interpreting the events
// (routing decisions, lifecycle transitions) happens elsewhere.

// InboundCallForm captures the subset of inbound-voice webhook fields we use.
type InboundCallForm struct {
	CallSID    string
	AccountSID string
	From       string
	To         string
	CallStatus string
	Direction  string
	CallerName string
}

func ParseInboundCall(r *http.Request) (InboundCallForm, error) {
	if err := r.ParseForm(); err != nil {
		return InboundCallForm{}, err
	}
	f := InboundCallForm{
		CallSID:    r.PostFormValue("CallSid"),
		AccountSID: r.PostFormValue("AccountSid"),
		From:       normalizePhone(r.PostFormValue("From")),
		To:         normalizePhone(r.PostFormValue("To")),
		CallStatus: r.PostFormValue("CallStatus"),
		Direction:  r.PostFormValue("Direction"),
		CallerName: r.PostFormValue("CallerName"),
	}
	if f.CallSID == "" {
		return InboundCallForm{}, errors.New("telephony: webhook missing CallSid")
	}
	return f, nil
}

// StatusCallbackForm captures a per-leg call-status event.
//
// ParentCallSID is set on child legs (the targets we dialed); it is empty on
// the original PSTN leg. Called carries the dialed target, which for browser
// clients looks like "client:abc123".
type StatusCallbackForm struct {
	CallSID       string
	ParentCallSID string
	CallStatus    string
	From          string
	To            string
	Called        string
	RecordingURL  string
	CallbackSrc   string
}

func ParseStatusCallback(r *http.Request) (StatusCallbackForm, error) {
	if err := r.ParseForm(); err != nil {
		return StatusCallbackForm{}, err
	}
	f := StatusCallbackForm{
		CallSID:       r.PostFormValue("CallSid"),
		ParentCallSID: r.PostFormValue("ParentCallSid"),
		CallStatus:    r.PostFormValue("CallStatus"),
		From:          normalizePhone(r.PostFormValue("From")),
		To:            normalizePhone(r.PostFormValue("To")),
		Called:        normalizePhone(r.PostFormValue("Called")),
		RecordingURL:  r.PostFormValue("RecordingUrl"),
		CallbackSrc:   r.PostFormValue("CallbackSource"),
	}
	if f.CallSID == "" {
		return StatusCallbackForm{}, errors.New("telephony: webhook missing CallSid")
	}
	if f.CallStatus == "" {
		// Dial action callbacks report DialCallStatus instead.
		f.CallStatus = r.PostFormValue("DialCallStatus")
	}
	return f, nil
}

func normalizePhone(s string) string {
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return strings.TrimSpace(s)
}
