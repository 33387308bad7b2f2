package calls

// StatusClass groups raw provider call statuses by their lifecycle meaning.
type StatusClass int

const (
	StatusUnknown StatusClass = iota
	StatusRinging
	StatusAnswered
	StatusTerminal
)

// ClassifyStatus maps a provider status string to its class.
// Unrecognized statuses are reported, logged by callers, and ignored.
func ClassifyStatus(status string) StatusClass {
	switch status {
	case "initiated", "queued", "ringing":
		return StatusRinging
	case "in-progress", "answered":
		return StatusAnswered
	case "completed", "busy", "failed", "no-answer", "canceled":
		return StatusTerminal
	default:
		return StatusUnknown
	}
}

// StatusEvent is one normalized per-leg call-status webhook.
//
// LegSID identifies the leg the event is about; ParentSID is set when the leg
// was dialed as part of another call's ring group. Called carries the dialed
// target: a phone number, or "client:<identity>" for browser softphones.
type StatusEvent struct {
	LegSID    string
	ParentSID string
	Status    string

	From   string
	To     string
	Called string

	RecordingURL string
}

// CanonicalSID is the identity of the whole call tree: the parent leg's SID
// when one exists, otherwise the leg's own SID. Deterministic regardless of
// event arrival order.
func (e StatusEvent) CanonicalSID() string {
	if e.ParentSID != "" {
		return e.ParentSID
	}
	return e.LegSID
}

// IsChildLeg reports whether this event describes a dialed target rather
// than the originating call. A child leg finishing never ends the call;
// only the canonical leg's terminal event is authoritative.
func (e StatusEvent) IsChildLeg() bool {
	return e.ParentSID != "" && e.ParentSID != e.LegSID
}
