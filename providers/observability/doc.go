// Package observability defines the core interfaces and semantic conventions
// used for distributed tracing and structured logging throughout the mago
// library.
//
// The central entry point is [Provider], which composes [Tracer] and [Logger]
// into a single injectable dependency. Callers propagate an active [Span]
// through a [context.Context] using [ContextWithSpan]; it can be retrieved
// with [SpanFromContext].
//
// The semconv.go file contains all standard attribute-key and span-name
// constants that should be used when recording observations, ensuring
// consistency across providers and components.
package observability
