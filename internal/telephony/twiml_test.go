package telephony

import (
	"strings"
	"testing"
)

func TestRenderDialPlan_ContainsAllTargets(t *testing.T) {
	xml, err := renderDialPlan(DialPlan{
		WorkspaceID:       "ws-1",
		From:              "+19995550000",
		To:                "+15557654321",
		AnnouncementText:  "This call may be recorded.",
		MediaStreamURL:    "wss://api.example.com/webhooks/twilio/media",
		StatusCallbackURL: "https://api.example.com/webhooks/twilio/status",
		TimeoutSeconds:    30,
		ClientIdentities:  []string{"B1"},
		ForwardingNumbers: []string{"+15551234567"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, want := range []string{
		"<Say>This call may be recorded.</Say>",
		`<Stream url="wss://api.example.com/webhooks/twilio/media"`,
		`name="workspace_id" value="ws-1"`,
		`answerOnBridge="true"`,
		`record="record-from-answer"`,
		`action="https://api.example.com/webhooks/twilio/status"`,
		">B1</Client>",
		">+15551234567</Number>",
		`statusCallbackEvent="initiated ringing answered completed"`,
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("expected %q in twiml:\n%s", want, xml)
		}
	}
}

func TestRenderDialPlan_EmptyGroupStillRendersDial(t *testing.T) {
	xml, err := renderDialPlan(DialPlan{WorkspaceID: "ws-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(xml, "<Dial") {
		t.Fatalf("expected dial verb even with no targets:\n%s", xml)
	}
	if strings.Contains(xml, "<Client") || strings.Contains(xml, "<Number") {
		t.Fatalf("expected no targets:\n%s", xml)
	}
}

func TestRenderDialPlan_RequiresWorkspace(t *testing.T) {
	if _, err := renderDialPlan(DialPlan{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRenderDialPlan_NoStreamWithoutURL(t *testing.T) {
	xml, err := renderDialPlan(DialPlan{WorkspaceID: "ws-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(xml, "<Start") {
		t.Fatalf("expected no media tap:\n%s", xml)
	}
}

func TestRenderUnavailable(t *testing.T) {
	xml := renderUnavailable("This number is not in service.")
	if !strings.Contains(xml, "<Say>This number is not in service.</Say>") {
		t.Fatalf("expected say verb:\n%s", xml)
	}
	if !strings.Contains(xml, "<Hangup") {
		t.Fatalf("expected hangup verb:\n%s", xml)
	}
	if strings.Contains(xml, "<Dial") {
		t.Fatalf("unavailable response must not dial:\n%s", xml)
	}
}
