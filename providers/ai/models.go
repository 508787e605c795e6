package ai

import (
	"encoding/json"

	"github.com/modal-agent/mago/internal/jsonschema"
)

/*
	##### CONNECTOR INPUT #####
*/

// ChatRequest represents a single chat turn to be adapted for a provider.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message         `json:"messages"`                    // Full conversation history, including the system message
	Tools            []ToolDescription `json:"tools,omitempty"`             // Tool definitions advertised to the model, if any
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Message represents a single message in a conversation. Messages are value
// types: a history grows by append only and entries are never edited in place.
type Message struct {
	// Core fields (always present)
	Role    MessageRole `json:"role"`
	Content Content     `json:"content"`

	// Tool calling fields
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links to the tool call being responded to
	Name       string     `json:"name,omitempty"`         // For role=tool, name of the tool that generated this response
}

// Content carries the text and/or image payload of a message. Both fields may
// be set on user messages; assistant and tool messages are text only.
type Content struct {
	Text  string `json:"text,omitempty"`
	Image *Image `json:"image,omitempty"`
}

// Image is an inline base64-encoded image reference.
type Image struct {
	Data   string `json:"data"`
	Format string `json:"img_fmt"` // e.g. "png", "jpeg"
}

// MimeType returns the image MIME type derived from Format.
func (i Image) MimeType() string {
	if i.Format == "" {
		return "image/png"
	}
	return "image/" + i.Format
}

// TextMessage builds a text-only message with the given role.
func TextMessage(role MessageRole, text string) Message {
	return Message{Role: role, Content: Content{Text: text}}
}

// UserMessage builds a user message carrying text and an optional image.
func UserMessage(text string, image *Image) Message {
	return Message{Role: RoleUser, Content: Content{Text: text, Image: image}}
}

// ToolResultMessage builds a tool-result message linked to the tool call that
// produced it.
func ToolResultMessage(callID, toolName, output string) Message {
	return Message{
		Role:       RoleTool,
		Content:    Content{Text: output},
		ToolCallID: callID,
		Name:       toolName,
	}
}

type GenerationConfig struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`  // Optional max tokens for the response
	Temperature float32 `json:"temperature,omitempty"` // Sampling temperature [0..2]. Higher => more random; lower => more deterministic.
	TopP        float32 `json:"top_p,omitempty"`       // Nucleus (top-p) sampling [0..1]. Alternative to temperature.
}

/*
	##### CONNECTOR OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Extended token metrics
	ReasoningTokens int `json:"reasoning_tokens,omitempty"` // Tokens spent on chain-of-thought reasoning
	CachedTokens    int `json:"cached_tokens,omitempty"`    // Cached prompt tokens
}

/*
	##### TOOL CALLING #####
*/

// ToolCall represents a function/tool call request from the model. The ID is
// provider-assigned and opaque; it pairs the call with its tool-result message.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"` // JSON object; may be loosely typed, providers hallucinate fields
}

// ToolResult is the standardized envelope for tool execution outcomes.
// It gives the model a consistent shape for both successes and failures so it
// can self-correct after a failed call.
type ToolResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`   // Error type if success=false (e.g. "tool_not_found", "tool_execution_failed")
	Message string `json:"message,omitempty"` // Human-readable message or error description
	Data    any    `json:"data,omitempty"`    // Actual result data if success=true
}

// NewToolResultSuccess creates a successful tool result carrying data.
func NewToolResultSuccess(data any) ToolResult {
	return ToolResult{Success: true, Data: data}
}

// NewToolResultError creates a failed tool result with error details.
// errorType should be a machine-readable error code; message a human-readable
// description of what went wrong.
func NewToolResultError(errorType, message string) ToolResult {
	return ToolResult{Success: false, Error: errorType, Message: message}
}

// ToJSON converts the ToolResult to a JSON string.
func (tr ToolResult) ToJSON() (string, error) {
	bytes, err := json.Marshal(tr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
	RoleTool      MessageRole = "tool"      // Tool/function output
)

// RoleSequence returns the ordered role values of a history. Connectors and
// tests use it to verify that adaptation preserves conversational order.
func RoleSequence(messages []Message) []MessageRole {
	roles := make([]MessageRole, len(messages))
	for i, msg := range messages {
		roles[i] = msg.Role
	}
	return roles
}
