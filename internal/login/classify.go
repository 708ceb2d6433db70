package login

import "fmt"

// Outcome is the verdict for one login attempt. Build it with Success or
// Failure rather than a struct literal.
type Outcome struct {
	OK     bool
	Reason string
}

// Success returns a passing outcome.
func Success() Outcome {
	return Outcome{OK: true}
}

// Failure returns a failing outcome carrying the diagnostic reason.
func Failure(reason string) Outcome {
	return Outcome{Reason: reason}
}

// String renders the outcome for log lines.
func (o Outcome) String() string {
	if o.OK {
		return "success"
	}
	return "failure: " + o.Reason
}

// Classify maps a response envelope plus the identifier used to a verdict.
// It is deterministic and total: every status code and body, however
// malformed, maps to exactly one outcome without panicking. email is only
// echoed into the 401 diagnostic.
func Classify(env Envelope, email string) Outcome {
	switch {
	case env.StatusCode == 200:
		switch ParseBody(env.Body) {
		case BodyMalformed:
			return Failure("Invalid JSON response: " + env.snippet(shortSnippetLen))
		case BodyMissingFields:
			return Failure("Unexpected response structure: " + string(env.Body))
		case BodyMissingToken:
			return Failure("Missing access_token in session: " + string(env.Body))
		default:
			return Success()
		}
	case env.StatusCode == 400:
		return Failure("Bad Request (400): Invalid credentials or format - " + env.snippet(longSnippetLen))
	case env.StatusCode == 401:
		return Failure("Unauthorized (401): Invalid email or password - " + email)
	case env.StatusCode == 429:
		return Failure("Rate Limited (429): Too many requests - server is throttling")
	case env.StatusCode >= 500:
		return Failure(fmt.Sprintf("Server Error (%d): Backend failure - %s", env.StatusCode, env.snippet(longSnippetLen)))
	case env.StatusCode == 0:
		return Failure("Connection Error (0): Request failed - timeout or connection reset")
	default:
		return Failure(fmt.Sprintf("Unexpected status (%d): %s", env.StatusCode, env.snippet(longSnippetLen)))
	}
}
