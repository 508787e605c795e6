package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/modal-agent/mago/providers/ai"
	"github.com/modal-agent/mago/providers/conversation"
)

// defaultTableName is the PostgreSQL table used when no custom name is provided.
const defaultTableName = "mago_conversations"

// Querier abstracts the pgx query methods needed by Store. Both *pgxpool.Pool
// and pgx.Tx satisfy this interface, allowing callers to inject either a
// connection pool or a single transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements [conversation.Store] with PostgreSQL persistence. One row
// per conversation, keyed by (user_id, agent_name, conversation_id); the
// chat history and metadata are JSONB columns. Thread safety is handled by
// the underlying pgx connection pool.
type Store struct {
	db        Querier
	tableName string
}

// Compile-time check: Store must implement conversation.Store.
var _ conversation.Store = (*Store)(nil)

// Option configures optional Store behavior.
type Option func(*Store)

// WithTableName overrides the default table name ("mago_conversations").
// The name is sanitized via pgx.Identifier to prevent SQL injection, since
// it is interpolated into queries via fmt.Sprintf.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New creates a PostgreSQL-backed conversation store. The db parameter must
// be a pgx-compatible query executor (typically *pgxpool.Pool).
func New(db Querier, opts ...Option) *Store {
	store := &Store{
		db:        db,
		tableName: defaultTableName,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Save upserts the conversation row. The insert timestamp is preserved on
// conflict; history, metadata, and updated_at are replaced wholesale.
func (s *Store) Save(ctx context.Context, userID, agentName, conversationID string, conv *conversation.Conversation) error {
	key := storageKey(userID, agentName, conversationID)
	if conv == nil {
		return conversation.NewIOFailure(key, errors.New("nil conversation"))
	}

	conv.Touch()
	historyJSON, err := json.Marshal(conv.ChatHistory)
	if err != nil {
		return conversation.NewIOFailure(key, err)
	}
	metadataJSON, err := marshalNullableJSON(conv.Metadata)
	if err != nil {
		return conversation.NewIOFailure(key, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(user_id, agent_name, conversation_id, chat_history, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, agent_name, conversation_id)
		DO UPDATE SET chat_history = EXCLUDED.chat_history,
		              metadata     = EXCLUDED.metadata,
		              updated_at   = EXCLUDED.updated_at`, s.tableName)

	_, err = s.db.Exec(ctx, query,
		userID,
		agentName,
		conversationID,
		historyJSON,
		metadataJSON,
		conv.CreatedAt,
		conv.UpdatedAt,
	)
	if err != nil {
		return conversation.NewIOFailure(key, err)
	}
	return nil
}

// Load retrieves a conversation row by key.
func (s *Store) Load(ctx context.Context, userID, agentName, conversationID string) (*conversation.Conversation, error) {
	key := storageKey(userID, agentName, conversationID)

	query := fmt.Sprintf(`SELECT chat_history, metadata, created_at, updated_at
		FROM %s WHERE user_id = $1 AND agent_name = $2 AND conversation_id = $3`, s.tableName)

	conv := conversation.Conversation{AgentName: agentName}
	var historyJSON, metadataJSON []byte

	err := s.db.QueryRow(ctx, query, userID, agentName, conversationID).
		Scan(&historyJSON, &metadataJSON, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, conversation.NewNotFound(key)
		}
		return nil, conversation.NewIOFailure(key, err)
	}

	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &conv.ChatHistory); err != nil {
			return nil, conversation.NewIOFailure(key, fmt.Errorf("corrupt chat history: %w", err))
		}
	}
	if conv.ChatHistory == nil {
		conv.ChatHistory = []ai.Message{}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &conv.Metadata); err != nil {
			return nil, conversation.NewIOFailure(key, fmt.Errorf("corrupt metadata: %w", err))
		}
	}
	return &conv, nil
}

// Delete removes a conversation row.
func (s *Store) Delete(ctx context.Context, userID, agentName, conversationID string) error {
	key := storageKey(userID, agentName, conversationID)

	query := fmt.Sprintf(`DELETE FROM %s
		WHERE user_id = $1 AND agent_name = $2 AND conversation_id = $3`, s.tableName)

	tag, err := s.db.Exec(ctx, query, userID, agentName, conversationID)
	if err != nil {
		return conversation.NewIOFailure(key, err)
	}
	if tag.RowsAffected() == 0 {
		return conversation.NewNotFound(key)
	}
	return nil
}

// List enumerates the conversations stored for (userID, agentName), most
// recently updated first.
func (s *Store) List(ctx context.Context, userID, agentName string) ([]conversation.Summary, error) {
	key := storageKey(userID, agentName, "")

	query := fmt.Sprintf(`SELECT conversation_id, updated_at, pg_column_size(chat_history)
		FROM %s WHERE user_id = $1 AND agent_name = $2 ORDER BY updated_at DESC`, s.tableName)

	rows, err := s.db.Query(ctx, query, userID, agentName)
	if err != nil {
		return nil, conversation.NewIOFailure(key, err)
	}
	defer rows.Close()

	summaries := []conversation.Summary{}
	for rows.Next() {
		summary := conversation.Summary{AgentName: agentName}
		if err := rows.Scan(&summary.ConversationID, &summary.UpdatedAt, &summary.SizeBytes); err != nil {
			return nil, conversation.NewIOFailure(key, err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, conversation.NewIOFailure(key, err)
	}
	return summaries, nil
}

// storageKey renders the logical key used in error messages.
func storageKey(userID, agentName, conversationID string) string {
	key := userID + "/" + agentName
	if conversationID != "" {
		key += "/" + conversationID
	}
	return key
}

// marshalNullableJSON maps a nil map to SQL NULL instead of storing "null"
// in the JSONB column.
func marshalNullableJSON(metadata map[string]any) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(metadata)
}
