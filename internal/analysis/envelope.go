package analysis

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/skillgap/internal/skillgap"
)

// Envelope is the record stored in place of a model response that did not decode
// as a complete document. The original text is kept so it can be re-extracted later.
type Envelope struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response"`
}

// WrapEnvelope serializes raw inside an Envelope with the given error message.
func WrapEnvelope(message, raw string) string {
	data, err := json.Marshal(Envelope{Error: message, RawResponse: raw})
	if err != nil {
		return raw
	}
	return string(data)
}

// UnwrapEnvelope returns the model text carried by an error envelope, and whether
// payload was one. The envelope field is looked up under aliases, or under the
// default envelope field names when none are given. Payloads that are not an
// envelope are returned unchanged.
func UnwrapEnvelope(payload string, aliases ...string) (string, bool) {
	if len(aliases) == 0 {
		aliases = skillgap.DefaultOptions().EnvelopeAliases
	}

	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") {
		return payload, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return payload, false
	}

	for _, alias := range aliases {
		raw, ok := fields[alias]
		if !ok {
			continue
		}
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			continue
		}
		return inner, true
	}
	return payload, false
}
