package anthropic

import "encoding/json"

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// anthropicRequest represents the request body for Anthropic's Messages API.
type anthropicRequest struct {
	Model       string               `json:"model"`
	Messages    []anthropicMessage   `json:"messages"`
	System      string               `json:"system,omitempty"` // Lifted from the leading system message
	MaxTokens   int                  `json:"max_tokens"`       // Required by Anthropic on every request
	Temperature *float64             `json:"temperature,omitempty"`
	TopP        *float64             `json:"top_p,omitempty"`
	Tools       []anthropicTool      `json:"tools,omitempty"`
	ToolChoice  *anthropicToolChoice `json:"tool_choice,omitempty"`
}

// anthropicMessage represents a single message in the conversation.
// Anthropic only accepts user and assistant roles here; system content lives
// in the top-level field and tool results ride in user turns.
type anthropicMessage struct {
	Role    string                  `json:"role"`    // "user" or "assistant"
	Content []anthropicContentBlock `json:"content"` // Array of content blocks
}

// anthropicContentBlock is a discriminated union via the Type field.
// Depending on Type, different fields are populated:
//   - "text": Text
//   - "image": Source (base64)
//   - "tool_use": ID, Name, Input
//   - "tool_result": ToolUseID, Content
type anthropicContentBlock struct {
	Type      string           `json:"type"`
	Text      string           `json:"text,omitempty"`
	Source    *anthropicSource `json:"source,omitempty"`      // For image type
	ID        string           `json:"id,omitempty"`          // For tool_use
	Name      string           `json:"name,omitempty"`        // For tool_use
	Input     json.RawMessage  `json:"input,omitempty"`       // For tool_use (arbitrary JSON)
	ToolUseID string           `json:"tool_use_id,omitempty"` // For tool_result
	Content   json.RawMessage  `json:"content,omitempty"`     // For tool_result (JSON string)
}

// anthropicSource represents an inline base64 media source.
type anthropicSource struct {
	Type      string `json:"type"`                 // "base64"
	MediaType string `json:"media_type,omitempty"` // MIME type
	Data      string `json:"data,omitempty"`       // Base64-encoded data
}

// anthropicTool describes a tool/function available to the model.
type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"` // JSON Schema for tool input
}

// anthropicToolChoice controls which tool the model should use.
type anthropicToolChoice struct {
	Type string `json:"type"`           // "auto", "any", "tool"
	Name string `json:"name,omitempty"` // Only for type="tool"
}

/*
	ANTHROPIC MESSAGES API - RESPONSE TYPES
*/

// anthropicResponse represents the response from Anthropic's Messages API.
type anthropicResponse struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"` // "message"
	Role         string                 `json:"role"` // "assistant"
	Content      []responseContentBlock `json:"content"`
	Model        string                 `json:"model"`
	StopReason   string                 `json:"stop_reason"` // "end_turn", "tool_use", "max_tokens"
	StopSequence string                 `json:"stop_sequence,omitempty"`
	Usage        anthropicUsage         `json:"usage"`
}

// responseContentBlock represents a content block in the response.
// Unknown type values are silently ignored during conversion for
// forward-compatibility.
type responseContentBlock struct {
	Type  string          `json:"type"`            // "text", "tool_use"
	Text  string          `json:"text,omitempty"`  // For type="text"
	ID    string          `json:"id,omitempty"`    // For type="tool_use"
	Name  string          `json:"name,omitempty"`  // For type="tool_use"
	Input json.RawMessage `json:"input,omitempty"` // For type="tool_use" (arbitrary JSON)
}

// anthropicUsage reports token consumption for a single request.
type anthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
}
