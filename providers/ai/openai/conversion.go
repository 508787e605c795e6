package openai

import (
	"encoding/json"

	"github.com/modal-agent/mago/internal/utils"
	"github.com/modal-agent/mago/providers/ai"
)

// buildDataURL formats base64 data into a data URL for OpenAI image inputs.
func buildDataURL(mimeType, data string) string {
	if mimeType == "" || data == "" {
		return ""
	}
	return "data:" + mimeType + ";base64," + data
}

// requestToWire converts the neutral request to the chat completions wire
// format. The OpenAI API accepts the neutral role sequence unchanged,
// including an inline system message, so adaptation is a per-message mapping
// that preserves order.
func requestToWire(request ai.ChatRequest, model string) (*chatCompletionRequest, error) {
	req := &chatCompletionRequest{Model: model}

	for _, msg := range request.Messages {
		chatMsg := chatMessage{
			Role: string(msg.Role),
		}

		if msg.Content.Image != nil {
			parts := []contentPart{}
			if msg.Content.Text != "" {
				parts = append(parts, contentPart{Type: "text", Text: msg.Content.Text})
			}
			parts = append(parts, contentPart{
				Type:     "image_url",
				ImageURL: &contentPartImage{URL: buildDataURL(msg.Content.Image.MimeType(), msg.Content.Image.Data)},
			})
			chatMsg.Content = parts
		} else if msg.Content.Text != "" || msg.Role != ai.RoleAssistant {
			chatMsg.Content = msg.Content.Text
		}

		for _, tc := range msg.ToolCalls {
			toolCall := chatToolCall{ID: tc.ID, Type: "function"}
			toolCall.Function.Name = tc.Name
			toolCall.Function.Arguments = string(tc.Arguments)
			chatMsg.ToolCalls = append(chatMsg.ToolCalls, toolCall)
		}

		chatMsg.ToolCallID = msg.ToolCallID
		chatMsg.Name = msg.Name

		req.Messages = append(req.Messages, chatMsg)
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature > 0 {
			req.Temperature = utils.Ptr(float64(cfg.Temperature))
		}
		if cfg.TopP > 0 {
			req.TopP = utils.Ptr(float64(cfg.TopP))
		}
		if cfg.MaxTokens > 0 {
			req.MaxCompletionTokens = utils.Ptr(cfg.MaxTokens)
		}
	}

	if len(request.Tools) > 0 {
		for _, tl := range request.Tools {
			fn := chatFunction{
				Name:        tl.Name,
				Description: tl.Description,
			}
			if tl.Parameters != nil {
				fn.Parameters = *tl.Parameters
			}
			req.Tools = append(req.Tools, chatTool{Type: "function", Function: fn})
		}
		req.ToolChoice = "auto"
	}

	return req, nil
}

// responseToNeutral maps the first choice of a chat completions response to
// the neutral assistant message and usage counters.
func responseToNeutral(resp *chatCompletionResponse) (*ai.Message, *ai.Usage, error) {
	choice := resp.Choices[0]

	msg := &ai.Message{
		Role:    ai.RoleAssistant,
		Content: ai.Content{Text: choice.Message.Content},
	}
	if choice.Message.Content == "" && choice.Message.Refusal != "" {
		msg.Content.Text = choice.Message.Refusal
	}

	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ai.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	usage := &ai.Usage{}
	if resp.Usage != nil {
		usage.PromptTokens = resp.Usage.PromptTokens
		usage.CompletionTokens = resp.Usage.CompletionTokens
		usage.TotalTokens = resp.Usage.TotalTokens
		if resp.Usage.CompletionTokensDetails != nil {
			usage.ReasoningTokens = resp.Usage.CompletionTokensDetails.ReasoningTokens
		}
		if resp.Usage.PromptTokensDetails != nil {
			usage.CachedTokens = resp.Usage.PromptTokensDetails.CachedTokens
		}
	}

	return msg, usage, nil
}
