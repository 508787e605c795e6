package ai

import (
	"context"

	"github.com/modal-agent/mago/core/cost"
)

// Connector is the core interface every provider implementation must satisfy.
// It splits one chat turn into three explicit steps — adapt, send, normalize —
// so that a conversation history held in the neutral model can be moved
// between providers without translation loss.
type Connector interface {
	// AdaptHistory translates the neutral history and tool descriptors into
	// the provider's wire request. It must preserve message order and role
	// semantics; provider quirks (single system message, merged tool-result
	// turns, forbidden consecutive same-role messages) are normalized here,
	// never upstream. Returns an InvalidRequest error when the request uses
	// a modality the connector does not support.
	AdaptHistory(request ChatRequest) (*Request, error)

	// Send performs the blocking network call for an adapted request.
	// Connectors never retry; Auth, RateLimited, InvalidRequest, and Network
	// errors propagate to the caller, who owns the retry/backoff decision.
	Send(ctx context.Context, request *Request) (*Response, error)

	// Normalize decodes the provider response and maps it back to the neutral
	// assistant message (including any tool calls) and raw usage counters.
	Normalize(response *Response) (*Message, *Usage, error)

	// Capabilities reports the modality flags of this connector.
	Capabilities() Capabilities

	// DefaultModel returns the model used when a request does not name one.
	DefaultModel() string

	// ModelCost is the per-model pricing lookup consumed by the token ledger.
	// Pricing varies by model tier and is a pure lookup, never negotiated.
	ModelCost(model string) cost.ModelCost
}

// Capabilities describes the modality flags a connector declares for its
// configured endpoint and default model.
type Capabilities struct {
	Multimodal  bool // Model accepts image input
	ToolCalling bool // Model supports tool/function calling
	Reasoning   bool // Model emits chain-of-thought reasoning tokens
}

// Request is a provider wire request ready to send: the endpoint URL, the
// headers carrying authentication, and the provider-specific JSON body
// produced by AdaptHistory.
type Request struct {
	URL     string
	Headers []Header
	Body    any
	Model   string // Model this request targets, used for ledger keying
}

// Header is a single HTTP header key/value pair.
type Header struct {
	Key   string
	Value string
}

// Response is the raw provider response as received off the wire. Normalize
// decodes Body into the provider's response shape.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}
