package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/modal-agent/mago/core/cost"
	"github.com/modal-agent/mago/internal/utils"
	"github.com/modal-agent/mago/providers/ai"
	"github.com/modal-agent/mago/providers/observability"
	"github.com/modal-agent/mago/providers/tool"
)

const defaultMaxIterations = 10

// Agent drives a conversation with a Connector to completion: it sends the
// history, executes any tool calls the model requests, feeds reviewer
// feedback back in, and returns the final answer once the model stops asking
// for work and the reviewer (if any) approves.
//
// An Agent owns its history and media context and is not safe for concurrent
// use. Run one Ask at a time, or give each goroutine its own Agent.
type Agent struct {
	name          string
	connector     ai.Connector
	systemPrompt  string
	tools         *tool.Catalog
	reviewer      Reviewer
	ledger        *cost.Ledger
	maxIterations int
	model         string
	genConfig     *ai.GenerationConfig
	usageCallback UsageCallback
	obs           observability.Provider

	history []ai.Message
	media   *mediaContext
}

// UsageReport is delivered to the usage callback after every provider call.
type UsageReport struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	Cost             float64
}

// UsageCallback observes token usage as it accrues. Called synchronously
// inside Ask, after the ledger is updated and before any review gating.
type UsageCallback func(report UsageReport)

// Option configures an Agent at construction time.
type Option func(*Agent)

// WithName sets the agent name, used for observability and for stamping the
// messages this agent appends so that shared histories can be filtered.
func WithName(name string) Option {
	return func(a *Agent) { a.name = name }
}

// WithConnector sets the provider connector. Required.
func WithConnector(connector ai.Connector) Option {
	return func(a *Agent) { a.connector = connector }
}

// WithSystemPrompt sets the system prompt prepended to every outbound
// request. The prompt lives outside the history, so it can be swapped with
// UpdateSystemPrompt without rewriting past messages.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.systemPrompt = prompt }
}

// WithTools registers tools the model may call.
func WithTools(tools ...tool.GenericTool) Option {
	return func(a *Agent) { a.tools.Add(tools...) }
}

// WithReviewer installs a reviewer gate on final candidate answers.
func WithReviewer(reviewer Reviewer) Option {
	return func(a *Agent) { a.reviewer = reviewer }
}

// WithLedger attaches a token ledger. Every send is authorized against the
// ledger's budget first, and usage is recorded after every response.
func WithLedger(ledger *cost.Ledger) Option {
	return func(a *Agent) { a.ledger = ledger }
}

// WithMaxIterations caps provider round trips per Ask. Tool-call rounds and
// review cycles share the same budget. Values below one are ignored.
func WithMaxIterations(max int) Option {
	return func(a *Agent) {
		if max > 0 {
			a.maxIterations = max
		}
	}
}

// WithHistory seeds the conversation history, typically to hand a
// conversation produced under one connector off to another.
func WithHistory(history []ai.Message) Option {
	return func(a *Agent) { a.history = slices.Clone(history) }
}

// WithUsageCallback registers a token usage observer.
func WithUsageCallback(callback UsageCallback) Option {
	return func(a *Agent) { a.usageCallback = callback }
}

// WithModel overrides the connector's default model.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithGenerationConfig sets sampling parameters for every request.
func WithGenerationConfig(config ai.GenerationConfig) Option {
	return func(a *Agent) { a.genConfig = &config }
}

// WithObservability attaches a tracing/logging provider.
func WithObservability(provider observability.Provider) Option {
	return func(a *Agent) { a.obs = provider }
}

// New builds an Agent. A connector is required; everything else has
// defaults: no tools, no reviewer, no ledger, a ten-iteration cap.
func New(options ...Option) (*Agent, error) {
	a := &Agent{
		name:          "agent",
		tools:         tool.NewCatalog(),
		maxIterations: defaultMaxIterations,
		media:         newMediaContext(),
	}
	for _, option := range options {
		option(a)
	}
	if a.connector == nil {
		return nil, fmt.Errorf("agent: a connector is required")
	}
	if a.model == "" {
		a.model = a.connector.DefaultModel()
	}
	return a, nil
}

// AskOption configures a single Ask call.
type AskOption func(*askConfig)

type askConfig struct {
	image   *ai.Image
	filters []string
}

// WithImage attaches a base64-encoded image to the user message.
func WithImage(data, format string) AskOption {
	return func(c *askConfig) {
		c.image = &ai.Image{Data: data, Format: format}
	}
}

// WithFilter restricts the outbound history to messages stamped with one of
// the given names. Useful when several agents share one history and each
// should only see its own slice of it.
func WithFilter(names ...string) AskOption {
	return func(c *askConfig) { c.filters = names }
}

// Ask sends the user input (plus any attached image) and runs the
// conversation to completion. The returned string is the final assistant
// text; the full exchange, including tool calls and reviewer feedback, is
// appended to the agent's history.
func (a *Agent) Ask(ctx context.Context, input string, options ...AskOption) (string, error) {
	cfg := askConfig{}
	for _, option := range options {
		option(&cfg)
	}

	var span observability.Span
	if a.obs != nil {
		ctx, span = a.obs.StartSpan(ctx, observability.SpanAgentAsk,
			observability.String(observability.AttrAgentName, a.name),
			observability.String(observability.AttrAgentPrompt, observability.TruncateString(input, 256)),
		)
		defer span.End()
	}

	answer, err := a.run(ctx, input, cfg)
	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
		} else {
			span.SetStatus(observability.StatusOK, "")
		}
	}
	return answer, err
}

func (a *Agent) run(ctx context.Context, input string, cfg askConfig) (string, error) {
	if input != "" || cfg.image != nil {
		user := ai.UserMessage(input, cfg.image)
		user.Name = a.name
		a.history = append(a.history, user)
	}

	iterations := 0
	rejected := false
	for {
		if iterations >= a.maxIterations {
			if rejected {
				return "", ErrReviewRejected
			}
			return "", ErrIterationLimit
		}
		iterations++

		message, err := a.send(ctx, iterations, cfg.filters)
		if err != nil {
			return "", err
		}

		if len(message.ToolCalls) > 0 {
			for _, call := range message.ToolCalls {
				a.history = append(a.history, a.executeToolCall(ctx, call))
			}
			continue
		}

		if a.reviewer == nil {
			return message.Content.Text, nil
		}

		if span := observability.SpanFromContext(ctx); span != nil {
			span.AddEvent(observability.EventReviewRequested,
				observability.Int(observability.AttrAgentIteration, iterations))
		}
		review, err := a.reviewer.Review(ctx, *message, a.history)
		if err != nil {
			return "", fmt.Errorf("agent: reviewer failed: %w", err)
		}
		if span := observability.SpanFromContext(ctx); span != nil {
			span.SetAttributes(observability.String(observability.AttrAgentReviewDecision, string(review.Decision)))
		}

		switch review.Decision {
		case Approve:
			return message.Content.Text, nil
		case Reject:
			rejected = true
		default:
			rejected = false
		}

		feedback := ai.UserMessage(review.Feedback, review.Image)
		feedback.Name = a.name
		a.history = append(a.history, feedback)
	}
}

// send performs one authorized provider round trip and appends the assistant
// message to the history.
func (a *Agent) send(ctx context.Context, iteration int, filters []string) (*ai.Message, error) {
	if a.ledger != nil {
		if err := a.ledger.Authorize(); err != nil {
			return nil, err
		}
	}

	request := ai.ChatRequest{
		Model:            a.model,
		Messages:         a.outbound(filters),
		GenerationConfig: a.genConfig,
	}
	if a.tools.Size() > 0 {
		request.Tools = a.tools.Descriptions()
	}
	if a.obs != nil {
		a.obs.Trace(ctx, "sending chat request",
			observability.String("agent", a.name),
			observability.Int("messages", len(request.Messages)),
			observability.String("request", utils.TruncateString(utils.JSONToString(request), 2000)),
		)
	}

	wire, err := a.connector.AdaptHistory(request)
	if err != nil {
		return nil, err
	}
	response, err := a.connector.Send(ctx, wire)
	if err != nil {
		return nil, err
	}
	message, usage, err := a.connector.Normalize(response)
	if err != nil {
		return nil, err
	}

	if message.Name == "" {
		message.Name = a.name
	}
	a.history = append(a.history, *message)

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.Int(observability.AttrAgentIteration, iteration),
			observability.Int(observability.AttrAgentToolCalls, len(message.ToolCalls)),
		)
	}

	a.recordUsage(wire.Model, usage)
	return message, nil
}

func (a *Agent) recordUsage(model string, usage *ai.Usage) {
	if usage == nil {
		return
	}
	tokens := cost.TokenCount{
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		CachedTokens:     usage.CachedTokens,
		ReasoningTokens:  usage.ReasoningTokens,
	}
	pricing := a.connector.ModelCost(model)

	var spent float64
	if a.ledger != nil {
		entry := a.ledger.Record(model, tokens, pricing)
		spent = entry.Cost
	} else {
		spent = pricing.CalculateTotalCost(tokens.PromptTokens, tokens.CompletionTokens, tokens.CachedTokens, tokens.ReasoningTokens)
	}

	if a.usageCallback != nil {
		a.usageCallback(UsageReport{
			Model:            model,
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			Cost:             spent,
		})
	}
}

// executeToolCall dispatches one tool call and packages the outcome as a
// tool-result message. Failures, including unknown tool names, become
// success=false results so the model can self-correct; they never abort the
// conversation.
func (a *Agent) executeToolCall(ctx context.Context, call ai.ToolCall) ai.Message {
	t, ok := a.tools.Get(call.Name)
	if !ok {
		return a.toolFailure(call, "tool_not_found", fmt.Sprintf("no tool named %q is registered", call.Name))
	}

	args := a.media.substituteArgs(call.Arguments)
	output, err := t.Call(ctx, string(args))
	if err != nil {
		return a.toolFailure(call, "tool_execution_failed", err.Error())
	}

	output, _ = a.media.stashOutput(output)
	text, err := ai.NewToolResultSuccess(json.RawMessage(output)).ToJSON()
	if err != nil {
		return a.toolFailure(call, "tool_result_encoding_failed", err.Error())
	}
	return ai.ToolResultMessage(call.ID, call.Name, text)
}

func (a *Agent) toolFailure(call ai.ToolCall, kind, message string) ai.Message {
	text, err := ai.NewToolResultError(kind, message).ToJSON()
	if err != nil {
		// ToolResult marshals from plain strings; this cannot fail in practice.
		text = `{"success":false,"error":"tool_execution_failed"}`
	}
	return ai.ToolResultMessage(call.ID, call.Name, text)
}

// outbound assembles the request history: the system prompt (if any)
// followed by the stored history, optionally filtered by message name.
func (a *Agent) outbound(filters []string) []ai.Message {
	history := a.history
	if len(filters) > 0 {
		history = FilterByName(history, filters...)
	}
	if a.systemPrompt == "" {
		return slices.Clone(history)
	}
	out := make([]ai.Message, 0, len(history)+1)
	out = append(out, ai.TextMessage(ai.RoleSystem, a.systemPrompt))
	return append(out, history...)
}

// FilterByName keeps only the messages stamped with one of the given names.
func FilterByName(messages []ai.Message, names ...string) []ai.Message {
	filtered := make([]ai.Message, 0, len(messages))
	for _, message := range messages {
		if slices.Contains(names, message.Name) {
			filtered = append(filtered, message)
		}
	}
	return filtered
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// History returns a copy of the conversation history accumulated so far.
func (a *Agent) History() []ai.Message {
	return slices.Clone(a.history)
}

// UpdateSystemPrompt replaces the system prompt for subsequent requests.
// Past messages are untouched.
func (a *Agent) UpdateSystemPrompt(prompt string) {
	a.systemPrompt = prompt
}

// Media returns the payload stored under a media key generated during tool
// execution, letting callers retrieve images produced by tools.
func (a *Agent) Media(key string) (string, bool) {
	return a.media.get(key)
}
