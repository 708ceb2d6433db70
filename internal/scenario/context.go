package scenario

import "context"

type attemptInfoKey struct{}

// AttemptInfo identifies the attempt in flight for collaborators sitting
// behind the dispatcher, such as tracing middleware.
type AttemptInfo struct {
	User    string
	Attempt int
}

// WithAttemptInfo returns a context carrying info.
func WithAttemptInfo(ctx context.Context, info AttemptInfo) context.Context {
	return context.WithValue(ctx, attemptInfoKey{}, info)
}

// AttemptInfoFromContext reports the attempt in flight, if any.
func AttemptInfoFromContext(ctx context.Context) (AttemptInfo, bool) {
	if ctx == nil {
		return AttemptInfo{}, false
	}
	info, ok := ctx.Value(attemptInfoKey{}).(AttemptInfo)
	return info, ok
}
