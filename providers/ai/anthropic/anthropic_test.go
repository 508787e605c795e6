package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modal-agent/mago/providers/ai"
)

func newTestConnector(t *testing.T, opts ...Option) *Connector {
	t.Helper()
	opts = append([]Option{WithAPIKey("test-key")}, opts...)
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNew_MissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := New()
	if err == nil {
		t.Fatal("expected construction to fail without credential")
	}
	if !ai.IsAuth(err) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestAdaptHistory_LiftsSystemMessage(t *testing.T) {
	c := newTestConnector(t)

	req, err := c.AdaptHistory(ai.ChatRequest{Messages: []ai.Message{
		ai.TextMessage(ai.RoleSystem, "You are helpful."),
		ai.TextMessage(ai.RoleUser, "Hello"),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := req.Body.(*anthropicRequest)
	if body.System != "You are helpful." {
		t.Errorf("expected system lifted to top-level field, got %q", body.System)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
		t.Errorf("system message should not remain in messages: %+v", body.Messages)
	}
	if body.MaxTokens != defaultMaxTokens {
		t.Errorf("expected default max_tokens %d, got %d", defaultMaxTokens, body.MaxTokens)
	}
}

func TestAdaptHistory_MergesConsecutiveToolResults(t *testing.T) {
	c := newTestConnector(t)

	req, err := c.AdaptHistory(ai.ChatRequest{Messages: []ai.Message{
		ai.TextMessage(ai.RoleUser, "Run both tools."),
		{
			Role: ai.RoleAssistant,
			ToolCalls: []ai.ToolCall{
				{ID: "tc_1", Name: "Alpha", Arguments: json.RawMessage(`{}`)},
				{ID: "tc_2", Name: "Beta", Arguments: json.RawMessage(`{}`)},
			},
		},
		ai.ToolResultMessage("tc_1", "Alpha", `{"success":true}`),
		ai.ToolResultMessage("tc_2", "Beta", `{"success":true}`),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := req.Body.(*anthropicRequest)
	// user, assistant, single merged user turn
	if len(body.Messages) != 3 {
		t.Fatalf("expected 3 wire messages after merging, got %d", len(body.Messages))
	}

	merged := body.Messages[2]
	if merged.Role != "user" || len(merged.Content) != 2 {
		t.Fatalf("expected merged user turn with 2 tool results, got %+v", merged)
	}
	if merged.Content[0].ToolUseID != "tc_1" || merged.Content[1].ToolUseID != "tc_2" {
		t.Errorf("tool result order not preserved: %+v", merged.Content)
	}

	assistant := body.Messages[1]
	if len(assistant.Content) != 2 || assistant.Content[0].Type != "tool_use" {
		t.Errorf("expected tool_use blocks on assistant turn, got %+v", assistant.Content)
	}
}

func TestAdaptHistory_ImageBecomesSourceBlock(t *testing.T) {
	c := newTestConnector(t)

	req, err := c.AdaptHistory(ai.ChatRequest{Messages: []ai.Message{
		ai.UserMessage("Describe this.", &ai.Image{Data: "aGVsbG8=", Format: "jpeg"}),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := req.Body.(*anthropicRequest)
	blocks := body.Messages[0].Content
	if len(blocks) != 2 {
		t.Fatalf("expected text + image blocks, got %d", len(blocks))
	}
	img := blocks[1]
	if img.Type != "image" || img.Source == nil {
		t.Fatalf("expected image block with source, got %+v", img)
	}
	if img.Source.MediaType != "image/jpeg" || img.Source.Data != "aGVsbG8=" {
		t.Errorf("unexpected image source: %+v", img.Source)
	}
}

func TestAdaptHistory_ToolsRequireInputSchema(t *testing.T) {
	c := newTestConnector(t)

	req, err := c.AdaptHistory(ai.ChatRequest{
		Messages: []ai.Message{ai.TextMessage(ai.RoleUser, "hi")},
		Tools:    []ai.ToolDescription{{Name: "NoParams", Description: "takes nothing"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := req.Body.(*anthropicRequest)
	if len(body.Tools) != 1 {
		t.Fatalf("expected one tool, got %d", len(body.Tools))
	}
	if string(body.Tools[0].InputSchema) != `{"type":"object","properties":{}}` {
		t.Errorf("expected empty object schema for parameterless tool, got %s", body.Tools[0].InputSchema)
	}
}

func TestSend_SetsAnthropicHeaders(t *testing.T) {
	var apiKey, version string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		_, _ = w.Write([]byte(`{"type":"message","role":"assistant","content":[{"type":"text","text":"hi"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer server.Close()

	c := newTestConnector(t, WithBaseURL(server.URL))
	req, _ := c.AdaptHistory(ai.ChatRequest{Messages: []ai.Message{ai.TextMessage(ai.RoleUser, "hi")}})

	if _, err := c.Send(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apiKey != "test-key" {
		t.Errorf("expected x-api-key header, got %q", apiKey)
	}
	if version != anthropicVersion {
		t.Errorf("expected anthropic-version header, got %q", version)
	}
}

func TestSend_RateLimitClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	c := newTestConnector(t, WithBaseURL(server.URL))
	req, _ := c.AdaptHistory(ai.ChatRequest{Messages: []ai.Message{ai.TextMessage(ai.RoleUser, "hi")}})

	_, err := c.Send(context.Background(), req)
	if !ai.IsRateLimited(err) {
		t.Errorf("expected rate-limited error, got %v", err)
	}
}

func TestNormalize_TextAndUsage(t *testing.T) {
	c := newTestConnector(t)

	body := []byte(`{
		"id": "msg_1", "type": "message", "role": "assistant",
		"content": [{"type": "text", "text": "The answer is 4."}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 12, "output_tokens": 6, "cache_read_input_tokens": 4}
	}`)

	msg, usage, err := c.Normalize(&ai.Response{StatusCode: 200, Body: body})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Content.Text != "The answer is 4." {
		t.Errorf("unexpected text: %q", msg.Content.Text)
	}
	if usage.PromptTokens != 12 || usage.CompletionTokens != 6 || usage.TotalTokens != 18 {
		t.Errorf("unexpected usage: %+v", usage)
	}
	if usage.CachedTokens != 4 {
		t.Errorf("cache read tokens not mapped: %+v", usage)
	}
}

func TestNormalize_ToolUse(t *testing.T) {
	c := newTestConnector(t)

	body := []byte(`{
		"type": "message", "role": "assistant",
		"content": [
			{"type": "text", "text": "Let me calculate."},
			{"type": "tool_use", "id": "tc_1", "name": "Calculator", "input": {"A": 2, "B": 2, "Op": "add"}}
		],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 10, "output_tokens": 20}
	}`)

	msg, _, err := c.Normalize(&ai.Response{StatusCode: 200, Body: body})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(msg.ToolCalls))
	}
	tc := msg.ToolCalls[0]
	if tc.ID != "tc_1" || tc.Name != "Calculator" {
		t.Errorf("unexpected tool call: %+v", tc)
	}

	var args map[string]any
	if err := json.Unmarshal(tc.Arguments, &args); err != nil {
		t.Fatalf("arguments not valid JSON: %v", err)
	}
	if args["Op"] != "add" {
		t.Errorf("unexpected arguments: %v", args)
	}
}

func TestGetModelCost_SnapshotResolution(t *testing.T) {
	base := ModelPricing[ModelSonnet4]

	snapshot := GetModelCost("claude-sonnet-4-20250514")
	if snapshot != base {
		t.Errorf("snapshot should resolve to family pricing, got %+v", snapshot)
	}

	fallback := GetModelCost("claude-unknown")
	if fallback != ModelPricing[DefaultModelName] {
		t.Errorf("unknown model should fall back to default pricing, got %+v", fallback)
	}
}
