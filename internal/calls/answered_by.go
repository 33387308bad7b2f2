package calls

import "strings"

// clientPrefix marks a dial target as a browser softphone identity.
const clientPrefix = "client:"

// answeredByRule extracts the answering party from a status event.
// Rules are evaluated in order until one matches, keeping the precedence
// explicit and testable in isolation.
type answeredByRule struct {
	name    string
	extract func(StatusEvent) (string, bool)
}

var answeredByRules = []answeredByRule{
	{
		name: "client identity",
		extract: func(e StatusEvent) (string, bool) {
			for _, v := range []string{e.Called, e.To} {
				if id, ok := strings.CutPrefix(v, clientPrefix); ok && id != "" {
					return id, true
				}
			}
			return "", false
		},
	},
	{
		name: "called number",
		extract: func(e StatusEvent) (string, bool) {
			if e.Called != "" {
				return e.Called, true
			}
			return "", false
		},
	},
	{
		name: "dialed number",
		extract: func(e StatusEvent) (string, bool) {
			if e.To != "" {
				return e.To, true
			}
			return "", false
		},
	},
}

// AnsweredBy resolves who answered: the stripped client identity when the
// answering target was a browser softphone, otherwise the dialed or
// forwarding number unchanged.
func AnsweredBy(e StatusEvent) string {
	for _, rule := range answeredByRules {
		if v, ok := rule.extract(e); ok {
			return v
		}
	}
	return ""
}
