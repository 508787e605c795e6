package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/modal-agent/mago/internal/utils"
	"github.com/modal-agent/mago/providers/ai"
)

// defaultMaxTokens is applied when the request does not set one; Anthropic
// rejects requests without max_tokens.
const defaultMaxTokens = 4096

// requestToWire converts the neutral request into the Messages API body.
// A leading system message is lifted into the top-level system field, and
// consecutive tool-result messages are merged into a single user turn, which
// is the only layout the API accepts.
func requestToWire(request ai.ChatRequest, model string) (*anthropicRequest, error) {
	req := &anthropicRequest{
		Model:     model,
		MaxTokens: defaultMaxTokens,
	}

	messages := request.Messages
	if len(messages) > 0 && messages[0].Role == ai.RoleSystem {
		req.System = messages[0].Content.Text
		messages = messages[1:]
	}
	req.Messages = buildMessages(messages)

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature > 0 {
			req.Temperature = utils.Ptr(float64(cfg.Temperature))
		}
		if cfg.TopP > 0 {
			req.TopP = utils.Ptr(float64(cfg.TopP))
		}
		if cfg.MaxTokens > 0 {
			req.MaxTokens = cfg.MaxTokens
		}
	}

	if len(request.Tools) > 0 {
		req.Tools = buildTools(request.Tools)
		req.ToolChoice = &anthropicToolChoice{Type: "auto"}
	}

	return req, nil
}

// buildMessages converts neutral messages into Anthropic message objects.
//
// Anthropic requires strictly alternating user/assistant turns. Consecutive
// tool-result messages (ai.RoleTool) are therefore merged into a single user
// message with multiple tool_result content blocks.
func buildMessages(messages []ai.Message) []anthropicMessage {
	var result []anthropicMessage

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleUser:
			result = append(result, anthropicMessage{
				Role:    "user",
				Content: userContentBlocks(msg.Content),
			})

		case ai.RoleAssistant:
			assistantMsg := anthropicMessage{Role: "assistant"}

			if msg.Content.Text != "" {
				assistantMsg.Content = append(assistantMsg.Content, anthropicContentBlock{
					Type: "text",
					Text: msg.Content.Text,
				})
			}
			for _, toolCall := range msg.ToolCalls {
				assistantMsg.Content = append(assistantMsg.Content, anthropicContentBlock{
					Type:  "tool_use",
					ID:    toolCall.ID,
					Name:  toolCall.Name,
					Input: toolCall.Arguments,
				})
			}

			if len(assistantMsg.Content) > 0 {
				result = append(result, assistantMsg)
			}

		case ai.RoleTool:
			// Marshal the result text as a JSON string so Anthropic receives a
			// well-formed JSON value in the content field.
			toolResultContent, err := json.Marshal(msg.Content.Text)
			if err != nil {
				toolResultContent = []byte(`""`)
			}

			toolResultBlock := anthropicContentBlock{
				Type:      "tool_result",
				ToolUseID: msg.ToolCallID,
				Content:   toolResultContent,
			}

			// Anthropic forbids two consecutive user turns, so multiple tool
			// responses must be combined into one message.
			if len(result) > 0 && isAllToolResults(result[len(result)-1]) {
				result[len(result)-1].Content = append(result[len(result)-1].Content, toolResultBlock)
			} else {
				result = append(result, anthropicMessage{
					Role:    "user",
					Content: []anthropicContentBlock{toolResultBlock},
				})
			}

		case ai.RoleSystem:
			// Only the leading system message is lifted; treat any stray one as
			// a user message to avoid a silent drop.
			result = append(result, anthropicMessage{
				Role:    "user",
				Content: []anthropicContentBlock{{Type: "text", Text: msg.Content.Text}},
			})
		}
	}

	return result
}

func userContentBlocks(content ai.Content) []anthropicContentBlock {
	var blocks []anthropicContentBlock
	if content.Text != "" || content.Image == nil {
		blocks = append(blocks, anthropicContentBlock{Type: "text", Text: content.Text})
	}
	if content.Image != nil {
		blocks = append(blocks, anthropicContentBlock{
			Type: "image",
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: content.Image.MimeType(),
				Data:      content.Image.Data,
			},
		})
	}
	return blocks
}

// isAllToolResults returns true when every content block in msg is a
// tool_result block, identifying a mergeable tool-result turn.
func isAllToolResults(msg anthropicMessage) bool {
	if msg.Role != "user" || len(msg.Content) == 0 {
		return false
	}
	for _, block := range msg.Content {
		if block.Type != "tool_result" {
			return false
		}
	}
	return true
}

// buildTools converts the neutral tool descriptions to Anthropic tool
// definitions. Anthropic requires input_schema on every entry, so tools
// without parameters get an empty object schema.
func buildTools(tools []ai.ToolDescription) []anthropicTool {
	result := make([]anthropicTool, 0, len(tools))

	for _, tool := range tools {
		entry := anthropicTool{
			Name:        tool.Name,
			Description: tool.Description,
		}

		if tool.Parameters != nil {
			if schemaBytes, err := json.Marshal(tool.Parameters); err == nil {
				entry.InputSchema = schemaBytes
			}
		}
		if entry.InputSchema == nil {
			entry.InputSchema = json.RawMessage(`{"type":"object","properties":{}}`)
		}

		result = append(result, entry)
	}

	return result
}

// responseToNeutral maps a Messages API response to the neutral assistant
// message and usage counters. Text blocks are concatenated; tool_use blocks
// become tool calls.
func responseToNeutral(resp *anthropicResponse) (*ai.Message, *ai.Usage, error) {
	msg := &ai.Message{Role: ai.RoleAssistant}

	var texts []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			texts = append(texts, block.Text)
		case "tool_use":
			msg.ToolCalls = append(msg.ToolCalls, ai.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}
	msg.Content.Text = strings.Join(texts, "\n")

	usage := &ai.Usage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		CachedTokens:     resp.Usage.CacheReadInputTokens,
	}

	return msg, usage, nil
}
