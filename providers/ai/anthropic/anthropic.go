package anthropic

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
	ProviderName = "anthropic"

	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses this to version-lock response formats independently of the URL.
	anthropicVersion = "2023-06-01"
)

// Connector implements [ai.Connector] for Anthropic's Messages API.
type Connector struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// Option configures a Connector.
type Option func(*Connector)

// WithAPIKey overrides the API key read from ANTHROPIC_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(c *Connector) { c.apiKey = apiKey }
}

// WithBaseURL overrides the API base URL. Use this when targeting a proxy or
// local testing endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Connector) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithModel sets the default model for requests that do not name one.
func WithModel(model string) Option {
	return func(c *Connector) { c.model = model }
}

// WithHTTPClient sets a custom HTTP client. Useful for injecting custom
// timeouts, transport layers, or test doubles.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) { c.client = client }
}

// New creates an Anthropic connector. The API key is read from
// ANTHROPIC_API_KEY and the base URL from ANTHROPIC_API_BASE_URL unless
// overridden by options. Construction fails with an auth error when no
// credential is available.
func New(opts ...Option) (*Connector, error) {
	c := &Connector{
		apiKey:  os.Getenv("ANTHROPIC_API_KEY"),
		baseURL: os.Getenv("ANTHROPIC_API_BASE_URL"),
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
		return nil, ai.NewError(ai.ErrKindAuth, ProviderName, "API key is not set (ANTHROPIC_API_KEY)")
	}
	return c, nil
}

var _ ai.Connector = (*Connector)(nil)

// AdaptHistory translates the neutral history into a Messages API request.
// A leading system message is lifted to the top-level system field and
// consecutive tool results are merged into single user turns.
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
		URL: c.baseURL + messagesEndpoint,
		Headers: []ai.Header{
			// x-api-key carries the credential; Anthropic does not use Bearer tokens.
			{Key: "x-api-key", Value: c.apiKey},
			{Key: "anthropic-version", Value: anthropicVersion},
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

// Normalize decodes the Messages API response into the neutral assistant
// message and usage counters.
func (c *Connector) Normalize(response *ai.Response) (*ai.Message, *ai.Usage, error) {
	resp, err := utils.DecodeJSON[anthropicResponse](response.Body)
	if err != nil {
		return nil, nil, ai.WrapNetworkError(ProviderName, err)
	}
	if len(resp.Content) == 0 && resp.StopReason == "" {
		return nil, nil, ai.NewError(ai.ErrKindNetwork, ProviderName, "empty response body")
	}

	return responseToNeutral(resp)
}

// Capabilities reports the modality flags for the configured default model.
func (c *Connector) Capabilities() ai.Capabilities {
	return ai.Capabilities{
		Multimodal:  true,
		ToolCalling: true,
		Reasoning:   false,
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
