package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modal-agent/mago/core/parse"
	"github.com/modal-agent/mago/internal/jsonschema"
	"github.com/modal-agent/mago/providers/ai"
	"github.com/modal-agent/mago/providers/observability"
)

// Tool represents a typed, callable tool that can be advertised to a language
// model. It binds a name and description to a strongly-typed Go function, and
// derives JSON schemas for both input (I) and output (O) via reflection at
// registration time. Use [New] to construct a Tool; implement [GenericTool]
// for provider-agnostic usage.
type Tool[I, O any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Output      *jsonschema.Schema
	Function    func(ctx context.Context, input I) (O, error)
}

// GenericTool is the provider-agnostic interface for all tools.
// It abstracts over the concrete generic type parameters of [Tool] so that
// tools can be stored, dispatched, and introspected without knowing their
// exact input/output types.
type GenericTool interface {
	// ToolInfo returns the metadata (name, description, parameter schema) used
	// to advertise this tool to a model provider.
	ToolInfo() ai.ToolDescription

	// Call invokes the tool with a JSON-encoded input string and returns a
	// JSON-encoded output string. Returns an error if parsing or execution fails.
	Call(ctx context.Context, inputJSON string) (string, error)
}

// Option configures a tool created via [New].
type Option func(*toolOptions)

type toolOptions struct {
	Description string
}

// WithDescription sets a human-readable description for the tool.
// Providers surface this description to the language model to help it decide
// when and how to invoke the tool.
func WithDescription(description string) Option {
	return func(o *toolOptions) {
		o.Description = description
	}
}

// New constructs a [Tool] with the given name and handler function.
// JSON schemas for the input type I and output type O are derived via
// reflection; types that cannot be expressed as JSON (func, chan, complex,
// unsafe pointer fields) fail here with a [*SchemaGenerationError] rather than
// at call time.
//
// Example:
//
//	search, err := tool.New("search", searchFunc,
//	    tool.WithDescription("Searches the web for a query."),
//	)
func New[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...Option) (*Tool[I, O], error) {
	opts := &toolOptions{}
	for _, option := range options {
		option(opts)
	}

	parameters, err := jsonschema.GenerateJSONSchema[I]()
	if err != nil {
		return nil, &SchemaGenerationError{ToolName: name, Err: err}
	}
	output, err := jsonschema.GenerateJSONSchema[O]()
	if err != nil {
		return nil, &SchemaGenerationError{ToolName: name, Err: err}
	}

	return &Tool[I, O]{
		Name:        name,
		Description: opts.Description,
		Parameters:  parameters,
		Output:      output,
		Function:    function,
	}, nil
}

// MustNew is like [New] but panics on schema generation failure. Intended for
// package-level tool construction where the input type is known-good.
func MustNew[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...Option) *Tool[I, O] {
	t, err := New(name, function, options...)
	if err != nil {
		panic(err)
	}
	return t
}

// ToolInfo returns the [ai.ToolDescription] used to advertise this tool.
func (t *Tool[I, O]) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call invokes the tool's underlying function with the given JSON-encoded
// input. It deserializes inputJSON into the tool's input type I, executes the
// function, and returns the result serialized as JSON. Input parsing is
// tolerant: malformed model-supplied JSON goes through repair before failing.
// Observability span events are emitted at the start and end of execution when
// a span is present in ctx.
func (t *Tool[I, O]) Call(ctx context.Context, inputJSON string) (string, error) {
	span := observability.SpanFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventToolExecutionStart,
			observability.String(observability.AttrToolName, t.Name),
			observability.String(observability.AttrToolInput, inputJSON),
		)
		defer span.AddEvent(observability.EventToolExecutionEnd)
	}

	start := time.Now()

	parsedInput, err := parse.ParseStringAs[I](inputJSON)
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetAttributes(
				observability.String(observability.AttrToolError, err.Error()),
			)
		}
		return "", err
	}

	output, err := t.Function(ctx, parsedInput)
	duration := time.Since(start)

	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetAttributes(
				observability.String(observability.AttrToolError, err.Error()),
				observability.Duration(observability.AttrToolDuration, duration),
			)
		}
		return "", err
	}

	outputBytes, err := json.Marshal(output)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		return "", err
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrToolOutput, string(outputBytes)),
			observability.Duration(observability.AttrToolDuration, duration),
		)
	}

	return string(outputBytes), nil
}
