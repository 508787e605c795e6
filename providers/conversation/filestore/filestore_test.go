package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/modal-agent/mago/providers/ai"
	"github.com/modal-agent/mago/providers/conversation"
)

func sampleConversation() *conversation.Conversation {
	conv := conversation.New("helper", []ai.Message{
		ai.TextMessage(ai.RoleUser, "hello"),
		{
			Role: ai.RoleAssistant,
			ToolCalls: []ai.ToolCall{
				{ID: "call_1", Name: "calculator", Arguments: json.RawMessage(`{"a":2,"b":2,"op":"add"}`)},
			},
		},
		ai.ToolResultMessage("call_1", "calculator", `{"result":4}`),
		ai.TextMessage(ai.RoleAssistant, "the answer is 4"),
	})
	conv.Metadata = map[string]any{"topic": "arithmetic", "turns": float64(2)}
	return conv
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	saved := sampleConversation()

	if err := store.Save(ctx, "user-1", "helper", "conv-1", saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "user-1", "helper", "conv-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.AgentName != saved.AgentName {
		t.Errorf("agent name mismatch: %q vs %q", loaded.AgentName, saved.AgentName)
	}
	if !reflect.DeepEqual(loaded.ChatHistory, saved.ChatHistory) {
		t.Errorf("history mismatch:\nsaved:  %+v\nloaded: %+v", saved.ChatHistory, loaded.ChatHistory)
	}
	if !reflect.DeepEqual(loaded.Metadata, saved.Metadata) {
		t.Errorf("metadata mismatch: %+v vs %+v", loaded.Metadata, saved.Metadata)
	}
}

func TestSaveWritesKeyConventionPath(t *testing.T) {
	base := t.TempDir()
	store := New(base)

	if err := store.Save(context.Background(), "user-1", "helper", "conv-1", sampleConversation()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(base, "user-1", "helper", "conv-1.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	first := conversation.New("helper", []ai.Message{ai.TextMessage(ai.RoleUser, "first")})
	second := conversation.New("helper", []ai.Message{ai.TextMessage(ai.RoleUser, "second")})

	if err := store.Save(ctx, "u", "helper", "c", first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "u", "helper", "c", second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "u", "helper", "c")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ChatHistory[0].Content.Text != "second" {
		t.Errorf("expected last write to win, got %q", loaded.ChatHistory[0].Content.Text)
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Load(context.Background(), "nobody", "helper", "missing")
	if !conversation.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if conversation.IsIOFailure(err) {
		t.Error("NotFound must not classify as IOFailure")
	}
}

func TestLoadCorruptRecordIsIOFailure(t *testing.T) {
	base := t.TempDir()
	store := New(base)

	dir := filepath.Join(base, "u", "helper")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Load(context.Background(), "u", "helper", "bad")
	if !conversation.IsIOFailure(err) {
		t.Fatalf("expected IOFailure for corrupt record, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, "u", "helper", "c", sampleConversation()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, "u", "helper", "c"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "u", "helper", "c"); !conversation.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "u", "helper", "c"); !conversation.IsNotFound(err) {
		t.Errorf("expected NotFound deleting twice, got %v", err)
	}
}

func TestListSortedByRecency(t *testing.T) {
	base := t.TempDir()
	store := New(base)
	ctx := context.Background()

	for _, id := range []string{"old", "new"} {
		if err := store.Save(ctx, "u", "helper", id, sampleConversation()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	// Make the ordering unambiguous without sleeping.
	oldTime := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(base, "u", "helper", "old.json"), oldTime, oldTime); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.List(ctx, "u", "helper")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ConversationID != "new" || summaries[1].ConversationID != "old" {
		t.Errorf("expected most recent first, got %q then %q", summaries[0].ConversationID, summaries[1].ConversationID)
	}
	if summaries[0].SizeBytes == 0 {
		t.Error("expected a non-zero size")
	}
}

func TestListEmpty(t *testing.T) {
	store := New(t.TempDir())

	summaries, err := store.List(context.Background(), "nobody", "helper")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected empty list, got %d entries", len(summaries))
	}
}

func TestRejectsPathEscapingComponents(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	for _, part := range []string{"..", "a/b", `a\b`, ""} {
		if err := store.Save(ctx, part, "helper", "c", sampleConversation()); !conversation.IsIOFailure(err) {
			t.Errorf("expected IOFailure for user id %q, got %v", part, err)
		}
		if _, err := store.Load(ctx, "u", part, "c"); !conversation.IsIOFailure(err) {
			t.Errorf("expected IOFailure for agent name %q, got %v", part, err)
		}
	}
}
