package login

import "github.com/tidwall/gjson"

// BodyVerdict is the structural triage of a success-status response body,
// decided before the outcome table runs.
type BodyVerdict string

const (
	// BodyMalformed means the body is not valid JSON.
	BodyMalformed BodyVerdict = "malformed"
	// BodyMissingFields means the body parses but lacks the top-level user
	// or session key. Non-object JSON lands here too.
	BodyMissingFields BodyVerdict = "missing_fields"
	// BodyMissingToken means session is present but carries no access_token.
	BodyMissingToken BodyVerdict = "missing_token"
	// BodyValid means the body has the full expected shape.
	BodyValid BodyVerdict = "valid"
)

// ParseBody triages a response body against the expected success shape
// {"user": {...}, "session": {"access_token": ...}}.
func ParseBody(body []byte) BodyVerdict {
	if !gjson.ValidBytes(body) {
		return BodyMalformed
	}
	if !gjson.GetBytes(body, "user").Exists() || !gjson.GetBytes(body, "session").Exists() {
		return BodyMissingFields
	}
	if !gjson.GetBytes(body, "session.access_token").Exists() {
		return BodyMissingToken
	}
	return BodyValid
}
