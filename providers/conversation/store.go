package conversation

import (
	"context"
	"time"
)

// Store is the persistence contract shared by all backends. Save is a
// whole-object overwrite with last-write-wins semantics; there is no partial
// update or merge. Load of a missing key fails with a NotFound StorageError;
// transport and IO failures surface as IOFailure, so callers can tell "no
// such conversation" from "storage unavailable".
//
// Stores provide no cross-process locking. Single-writer discipline per
// conversation is the caller's contract.
type Store interface {
	// Save persists the conversation under the (userID, agentName,
	// conversationID) key, overwriting any previous record.
	Save(ctx context.Context, userID, agentName, conversationID string, conv *Conversation) error

	// Load retrieves a conversation by key.
	Load(ctx context.Context, userID, agentName, conversationID string) (*Conversation, error)

	// Delete removes a conversation by key. Deleting a missing key fails
	// with a NotFound StorageError.
	Delete(ctx context.Context, userID, agentName, conversationID string) error

	// List enumerates the conversations stored under the (userID, agentName)
	// prefix, most recently updated first.
	List(ctx context.Context, userID, agentName string) ([]Summary, error)
}

// Summary is a lightweight listing entry: enough to show a conversation
// picker without loading full histories.
type Summary struct {
	ConversationID string    `json:"conversation_id"`
	AgentName      string    `json:"agent_name"`
	UpdatedAt      time.Time `json:"updated_at"`
	SizeBytes      int64     `json:"size_bytes"`
}
