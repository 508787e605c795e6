package conversation

import (
	"time"

	"github.com/modal-agent/mago/providers/ai"
)

// Conversation is the persisted record of an agent conversation. The chat
// history is stored in the neutral message model, so a saved conversation can
// be resumed under any connector, not just the one that produced it.
//
// A conversation is identified externally by the (userID, agentName,
// conversationID) triple. The triple is a storage key owned by the store; it
// is deliberately not embedded here.
type Conversation struct {
	AgentName   string         `json:"agent_name"`
	ChatHistory []ai.Message   `json:"chat_history"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// New builds a conversation record with both timestamps set to now.
func New(agentName string, history []ai.Message) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		AgentName:   agentName,
		ChatHistory: history,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch advances the update timestamp. Stores call it on every Save so that
// List ordering reflects recency.
func (c *Conversation) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
