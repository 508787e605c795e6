package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "openai", "anthropic")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4o", "claude-sonnet-4")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMMaxTokens is the maximum tokens allowed
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Token Usage Attributes ---

const (
	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of completion tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Tool Execution Attributes ---

const (
	// AttrToolName is the name of the tool being executed
	AttrToolName = "tool.name"

	// AttrToolInput is the tool input (serialized)
	AttrToolInput = "tool.input"

	// AttrToolOutput is the tool output (serialized)
	AttrToolOutput = "tool.output"

	// AttrToolDuration is the execution duration
	AttrToolDuration = "tool.duration"

	// AttrToolError is the error message if tool execution failed
	AttrToolError = "tool.error"
)

// --- Request/Response Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrRequestToolsCount is the number of tools in the request
	AttrRequestToolsCount = "request.tools_count"

	// AttrResponseContent is the response content from LLM
	AttrResponseContent = "response.content"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Agent Attributes ---

const (
	// AttrAgentName is the configured agent name
	AttrAgentName = "agent.name"

	// AttrAgentIteration is the current tool-call iteration
	AttrAgentIteration = "agent.iteration"

	// AttrAgentToolCalls is the number of tool calls in a response
	AttrAgentToolCalls = "agent.tool_calls"

	// AttrAgentPrompt is the user prompt/input
	AttrAgentPrompt = "agent.prompt"

	// AttrAgentReviewDecision is the reviewer verdict for a final answer
	AttrAgentReviewDecision = "agent.review.decision"
)

// --- Conversation Storage Attributes ---

const (
	// AttrConversationID is the conversation identifier
	AttrConversationID = "conversation.id"

	// AttrConversationUserID is the owning user identifier
	AttrConversationUserID = "conversation.user_id"

	// AttrConversationMessages is the number of messages persisted
	AttrConversationMessages = "conversation.messages"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"
)

// --- Span Names ---

const (
	// SpanAgentAsk is the span name for a full agent ask cycle
	SpanAgentAsk = "agent.ask"

	// SpanLLMRequest is the span name for LLM API requests
	SpanLLMRequest = "llm.request"

	// SpanToolExecution is the span name for tool executions
	SpanToolExecution = "tool.execution"

	// SpanConversationOperation is the span name for conversation store operations
	SpanConversationOperation = "conversation.operation"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an LLM request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of an LLM request
	EventLLMRequestEnd = "llm.request.end"

	// EventToolExecutionStart marks the start of tool execution
	EventToolExecutionStart = "tool.execution.start"

	// EventToolExecutionEnd marks the end of tool execution
	EventToolExecutionEnd = "tool.execution.end"

	// EventTokensReceived marks when tokens are received from LLM
	EventTokensReceived = "llm.tokens.received" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// EventReviewRequested marks when a final answer is sent for review
	EventReviewRequested = "agent.review.requested"
)
