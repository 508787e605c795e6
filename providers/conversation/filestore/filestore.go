package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/modal-agent/mago/providers/conversation"
)

// Store persists conversations as JSON files under a base directory, one
// file per conversation at {base}/{userID}/{agentName}/{conversationID}.json.
type Store struct {
	base string
}

// Compile-time check: Store must implement conversation.Store.
var _ conversation.Store = (*Store)(nil)

// New creates a file-backed store rooted at base. Directories are created
// lazily on first Save.
func New(base string) *Store {
	return &Store{base: base}
}

// Save writes the conversation to disk, overwriting any previous record.
func (s *Store) Save(_ context.Context, userID, agentName, conversationID string, conv *conversation.Conversation) error {
	key := storageKey(userID, agentName, conversationID)
	if err := checkComponents(userID, agentName, conversationID); err != nil {
		return conversation.NewIOFailure(key, err)
	}
	if conv == nil {
		return conversation.NewIOFailure(key, errors.New("nil conversation"))
	}

	conv.Touch()
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return conversation.NewIOFailure(key, err)
	}

	path := s.path(userID, agentName, conversationID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return conversation.NewIOFailure(key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return conversation.NewIOFailure(key, err)
	}
	return nil
}

// Load reads a conversation back from disk.
func (s *Store) Load(_ context.Context, userID, agentName, conversationID string) (*conversation.Conversation, error) {
	key := storageKey(userID, agentName, conversationID)
	if err := checkComponents(userID, agentName, conversationID); err != nil {
		return nil, conversation.NewIOFailure(key, err)
	}

	data, err := os.ReadFile(s.path(userID, agentName, conversationID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, conversation.NewNotFound(key)
		}
		return nil, conversation.NewIOFailure(key, err)
	}

	var conv conversation.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, conversation.NewIOFailure(key, fmt.Errorf("corrupt record: %w", err))
	}
	return &conv, nil
}

// Delete removes a conversation file.
func (s *Store) Delete(_ context.Context, userID, agentName, conversationID string) error {
	key := storageKey(userID, agentName, conversationID)
	if err := checkComponents(userID, agentName, conversationID); err != nil {
		return conversation.NewIOFailure(key, err)
	}

	if err := os.Remove(s.path(userID, agentName, conversationID)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return conversation.NewNotFound(key)
		}
		return conversation.NewIOFailure(key, err)
	}
	return nil
}

// List enumerates the conversations stored for (userID, agentName), most
// recently written first. A user or agent with no saved conversations yields
// an empty list, not an error.
func (s *Store) List(_ context.Context, userID, agentName string) ([]conversation.Summary, error) {
	prefix := storageKey(userID, agentName, "")
	if err := checkComponents(userID, agentName); err != nil {
		return nil, conversation.NewIOFailure(prefix, err)
	}

	dir := filepath.Join(s.base, userID, agentName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []conversation.Summary{}, nil
		}
		return nil, conversation.NewIOFailure(prefix, err)
	}

	summaries := make([]conversation.Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		summaries = append(summaries, conversation.Summary{
			ConversationID: strings.TrimSuffix(entry.Name(), ".json"),
			AgentName:      agentName,
			UpdatedAt:      info.ModTime(),
			SizeBytes:      info.Size(),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (s *Store) path(userID, agentName, conversationID string) string {
	return filepath.Join(s.base, userID, agentName, conversationID+".json")
}

// storageKey renders the logical key used in error messages, independent of
// the OS path separator.
func storageKey(userID, agentName, conversationID string) string {
	key := userID + "/" + agentName
	if conversationID != "" {
		key += "/" + conversationID + ".json"
	}
	return key
}

// checkComponents rejects key parts that would escape the base directory.
func checkComponents(parts ...string) error {
	for _, part := range parts {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("invalid key component %q", part)
		}
	}
	return nil
}
