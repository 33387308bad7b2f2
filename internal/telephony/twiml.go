package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
)

// Minimal TwiML (Twilio Markup Language) builder.
// It intentionally avoids any provider SDK dependency.
//
// Only include primitives we need at the adapter boundary.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlStart struct {
	XMLName xml.Name     `xml:"Start"`
	Stream  *twimlStream `xml:"Stream,omitempty"`
}

type twimlStream struct {
	XMLName    xml.Name         `xml:"Stream"`
	URL        string           `xml:"url,attr"`
	Parameters []twimlParameter `xml:"Parameter"`
}

type twimlParameter struct {
	XMLName xml.Name `xml:"Parameter"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:"value,attr"`
}

type twimlDial struct {
	XMLName        xml.Name      `xml:"Dial"`
	AnswerOnBridge bool          `xml:"answerOnBridge,attr"`
	Record         string        `xml:"record,attr,omitempty"`
	Action         string        `xml:"action,attr,omitempty"`
	Method         string        `xml:"method,attr,omitempty"`
	Timeout        int           `xml:"timeout,attr,omitempty"`
	Clients        []twimlClient `xml:"Client"`
	Numbers        []twimlNumber `xml:"Number"`
}

type twimlClient struct {
	XMLName              xml.Name `xml:"Client"`
	StatusCallback       string   `xml:"statusCallback,attr,omitempty"`
	StatusCallbackEvent  string   `xml:"statusCallbackEvent,attr,omitempty"`
	StatusCallbackMethod string   `xml:"statusCallbackMethod,attr,omitempty"`
	Identity             string   `xml:",chardata"`
}

type twimlNumber struct {
	XMLName              xml.Name `xml:"Number"`
	StatusCallback       string   `xml:"statusCallback,attr,omitempty"`
	StatusCallbackEvent  string   `xml:"statusCallbackEvent,attr,omitempty"`
	StatusCallbackMethod string   `xml:"statusCallbackMethod,attr,omitempty"`
	Number               string   `xml:",chardata"`
}

// legEvents lists the per-leg lifecycle events every dial target reports back.
const legEvents = "initiated ringing answered completed"

// renderDialPlan maps a DialPlan to TwiML.
func renderDialPlan(plan DialPlan) (string, error) {
	if plan.WorkspaceID == "" {
		return "", errors.New("telephony: workspace_id required")
	}

	var r twimlResponse

	if plan.AnnouncementText != "" {
		r.Verbs = append(r.Verbs, twimlSay{Text: plan.AnnouncementText})
	}

	if plan.MediaStreamURL != "" {
		r.Verbs = append(r.Verbs, twimlStart{Stream: &twimlStream{
			URL: plan.MediaStreamURL,
			Parameters: []twimlParameter{
				{Name: "workspace_id", Value: plan.WorkspaceID},
				{Name: "from", Value: plan.From},
				{Name: "to", Value: plan.To},
			},
		}})
	}

	d := twimlDial{
		// Bridge audio only after a target answers; no early media leaks
		// between group members.
		AnswerOnBridge: true,
		Record:         "record-from-answer",
		Action:         plan.StatusCallbackURL,
		Method:         "POST",
		Timeout:        plan.TimeoutSeconds,
	}
	for _, id := range plan.ClientIdentities {
		d.Clients = append(d.Clients, twimlClient{
			Identity:             id,
			StatusCallback:       plan.StatusCallbackURL,
			StatusCallbackEvent:  legEvents,
			StatusCallbackMethod: "POST",
		})
	}
	for _, n := range plan.ForwardingNumbers {
		d.Numbers = append(d.Numbers, twimlNumber{
			Number:               n,
			StatusCallback:       plan.StatusCallbackURL,
			StatusCallbackEvent:  legEvents,
			StatusCallbackMethod: "POST",
		})
	}
	// An empty group is rendered anyway: forwarding numbers may be configured
	// later, and the caller simply hears ringback until timeout.
	r.Verbs = append(r.Verbs, d)

	return renderTwiML(r)
}

// renderUnavailable produces the graceful response for numbers that map to no
// workspace: say the message, then end the call.
func renderUnavailable(message string) string {
	out, err := renderTwiML(twimlResponse{Verbs: []any{
		twimlSay{Text: message},
		twimlHangup{},
	}})
	if err != nil {
		// Static document; marshalling cannot realistically fail, but keep a
		// bare fallback so webhook paths always have something to return.
		return xml.Header + "<Response><Hangup/></Response>"
	}
	return out
}

func renderTwiML(r twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
