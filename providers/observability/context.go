package observability

import "context"

// spanKey is unexported so no other package can collide with it.
type spanKey struct{}

// ContextWithSpan attaches span to ctx so downstream calls (tool handlers,
// nested agent invocations) can add events to the span that covers them.
// A nil ctx is treated as context.Background.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanKey{}, span)
}

// SpanFromContext returns the span attached to ctx, or nil when there is
// none. Callers must nil-check: instrumentation is optional everywhere.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(Span)
	return span
}
