package telephony

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func formRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/webhooks/twilio/status", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseInboundCall(t *testing.T) {
	r := formRequest(t, "CallSid=CA123&From=%2B19995550000&To=%2B15557654321&CallStatus=ringing")

	form, err := ParseInboundCall(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.CallSID != "CA123" {
		t.Fatalf("expected CallSid")
	}
	if form.From != "+19995550000" || form.To != "+15557654321" {
		t.Fatalf("unexpected from/to: %q %q", form.From, form.To)
	}
}

func TestParseInboundCall_MissingCallSidIsError(t *testing.T) {
	r := formRequest(t, "From=%2B1999&To=%2B1555")
	if _, err := ParseInboundCall(r); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseStatusCallback_ChildLeg(t *testing.T) {
	r := formRequest(t, "CallSid=CA456&ParentCallSid=CA123&CallStatus=completed&Called=client%3Aclient-abc")

	form, err := ParseStatusCallback(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.CallSID != "CA456" || form.ParentCallSID != "CA123" {
		t.Fatalf("unexpected sids: %+v", form)
	}
	if form.Called != "client:client-abc" {
		t.Fatalf("unexpected called: %q", form.Called)
	}
}

func TestParseStatusCallback_DialActionFallsBackToDialCallStatus(t *testing.T) {
	r := formRequest(t, "CallSid=CA123&DialCallStatus=completed")

	form, err := ParseStatusCallback(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.CallStatus != "completed" {
		t.Fatalf("expected DialCallStatus fallback, got %q", form.CallStatus)
	}
}

func TestParseStatusCallback_RecordingURL(t *testing.T) {
	r := formRequest(t, "CallSid=CA123&CallStatus=completed&RecordingUrl=https%3A%2F%2Fapi.twilio.com%2Frec%2FRE1")

	form, err := ParseStatusCallback(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.RecordingURL != "https://api.twilio.com/rec/RE1" {
		t.Fatalf("unexpected recording url: %q", form.RecordingURL)
	}
}
