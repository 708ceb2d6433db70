// Package login defines the wire contract of the login endpoint under test
// and classifies what comes back from it.
//
// The package covers both directions of one login attempt:
//   - Outbound: [Request] carries the credential payload posted to [Path]
//   - Inbound: [Envelope] carries the observed status code and raw body
//
// # Classification
//
// [Classify] maps an envelope plus the identifier used to an [Outcome]. It
// is a pure function over its inputs and never panics, whatever the server
// (or the network) produced:
//
//	outcome := login.Classify(env, cred.Email)
//	if !outcome.OK {
//		log.Println(outcome.Reason)
//	}
//
// Success requires status 200 and a body shaped like
//
//	{"user": {...}, "session": {"access_token": ...}}
//
// Everything else fails with a diagnostic reason string. A status code of
// 0 is the reserved encoding for transport-level failures; dispatchers
// produce it, this package only interprets it.
//
// # Body triage
//
// [ParseBody] runs before the status table and reduces a success-status
// body to a [BodyVerdict]: malformed JSON, a missing user or session
// field, a session without an access_token, or the full expected shape.
// The verdict decides which diagnostic the 200 branch emits.
package login
