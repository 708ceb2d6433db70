package login

// Envelope is the observable result of one dispatched login attempt: the
// HTTP status code plus the raw response body. StatusCode 0 is reserved
// for transport-level failures (timeout, connection reset, DNS); it never
// corresponds to a real HTTP status.
type Envelope struct {
	StatusCode int
	Body       []byte
}

const (
	shortSnippetLen = 100
	longSnippetLen  = 200
)

// snippet returns at most n leading bytes of the body as a string.
func (e Envelope) snippet(n int) string {
	if len(e.Body) <= n {
		return string(e.Body)
	}
	return string(e.Body[:n])
}
