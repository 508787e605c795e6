package openai

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/modal-agent/mago/core/cost"
	"github.com/modal-agent/mago/internal/utils"
	"github.com/modal-agent/mago/providers/ai"
)

const (
	// ProviderName identifies this connector in errors and observability.
	ProviderName = "openai"

	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// Connector implements [ai.Connector] for the OpenAI Chat Completions API and
// compatible endpoints.
type Connector struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// Option configures a Connector.
type Option func(*Connector)

// WithAPIKey overrides the API key read from OPENAI_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(c *Connector) { c.apiKey = apiKey }
}

// WithBaseURL points the connector at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Connector) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithModel sets the default model for requests that do not name one.
func WithModel(model string) Option {
	return func(c *Connector) { c.model = model }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) { c.client = client }
}

// New creates an OpenAI connector. The API key is read from OPENAI_API_KEY and
// the base URL from OPENAI_API_BASE_URL unless overridden by options.
// Construction fails with an auth error when no credential is available, so
// misconfiguration surfaces before the first request.
func New(opts ...Option) (*Connector, error) {
	c := &Connector{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: os.Getenv("OPENAI_API_BASE_URL"),
		model:   DefaultModelName,
		client:  &http.Client{},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		return nil, ai.NewError(ai.ErrKindAuth, ProviderName, "API key is not set (OPENAI_API_KEY)")
	}
	return c, nil
}

var _ ai.Connector = (*Connector)(nil)

// AdaptHistory translates the neutral history into a Chat Completions wire
// request. System messages pass through as-is since the API accepts a system
// role inline; image content becomes data-URL content parts.
func (c *Connector) AdaptHistory(request ai.ChatRequest) (*ai.Request, error) {
	model := request.Model
	if model == "" {
		model = c.model
	}

	body, err := requestToWire(request, model)
	if err != nil {
		return nil, err
	}

	return &ai.Request{
		URL: c.baseURL + chatCompletionsEndpoint,
		Headers: []ai.Header{
			{Key: "Authorization", Value: "Bearer " + c.apiKey},
		},
		Body:  body,
		Model: model,
	}, nil
}

// Send performs the blocking HTTP round trip. Non-2xx statuses are classified
// into the connector error taxonomy; the connector never retries.
func (c *Connector) Send(ctx context.Context, request *ai.Request) (*ai.Response, error) {
	headers := make([]utils.Header, len(request.Headers))
	for i, h := range request.Headers {
		headers[i] = utils.Header{Key: h.Key, Value: h.Value}
	}

	statusCode, status, body, err := utils.PostJSON(ctx, c.client, request.URL, headers, request.Body)
	if err != nil {
		return nil, ai.WrapNetworkError(ProviderName, err)
	}
	if statusCode < 200 || statusCode > 299 {
		return nil, ai.ClassifyStatus(ProviderName, statusCode, string(body))
	}

	return &ai.Response{StatusCode: statusCode, Status: status, Body: body}, nil
}

// Normalize decodes the Chat Completions response into the neutral assistant
// message and usage counters.
func (c *Connector) Normalize(response *ai.Response) (*ai.Message, *ai.Usage, error) {
	resp, err := utils.DecodeJSON[chatCompletionResponse](response.Body)
	if err != nil {
		return nil, nil, ai.WrapNetworkError(ProviderName, err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil, ai.NewError(ai.ErrKindNetwork, ProviderName, "no choices in response")
	}

	return responseToNeutral(resp)
}

// Capabilities reports the modality flags for the configured default model.
func (c *Connector) Capabilities() ai.Capabilities {
	return ai.Capabilities{
		Multimodal:  true,
		ToolCalling: true,
		Reasoning:   isReasoningModel(c.model),
	}
}

// DefaultModel returns the model used when a request does not name one.
func (c *Connector) DefaultModel() string {
	return c.model
}

// ModelCost returns the pricing for the given model, falling back to the
// default model's pricing for unknown names.
func (c *Connector) ModelCost(model string) cost.ModelCost {
	return GetModelCost(model)
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") ||
		strings.HasPrefix(model, "gpt-5")
}
