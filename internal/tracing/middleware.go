package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gignut/logindrill/internal/login"
	"github.com/gignut/logindrill/internal/scenario"
)

// WrapDispatcher layers a span around every dispatched login attempt.
// Spans carry the user id, attempt number, and response status code.
// Account identifiers and passwords never become span attributes.
func WrapDispatcher(next scenario.Dispatcher, tracer trace.Tracer, endpoint string) scenario.Dispatcher {
	return &tracedDispatcher{next: next, tracer: tracer, endpoint: endpoint}
}

type tracedDispatcher struct {
	next     scenario.Dispatcher
	tracer   trace.Tracer
	endpoint string
}

func (d *tracedDispatcher) Dispatch(ctx context.Context, req login.Request) (login.Envelope, error) {
	ctx, span := StartAttemptSpan(ctx, d.tracer, d.endpoint)

	if info, ok := scenario.AttemptInfoFromContext(ctx); ok {
		span.SetAttributes(
			attribute.String("logindrill.user", info.User),
			attribute.Int("logindrill.attempt", info.Attempt),
		)
	}

	env, err := d.next.Dispatch(ctx, req)
	if err != nil {
		EndSpan(span, err)
		return env, err
	}

	EndSpan(span, nil, attribute.Int("http.status_code", env.StatusCode))
	return env, nil
}
