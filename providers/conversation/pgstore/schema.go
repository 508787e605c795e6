package pgstore

import (
	"context"
	"fmt"
)

// createTableSQL is the DDL statement that creates the conversations table.
// The (user_id, agent_name, conversation_id) triple is the primary key, so
// Save can upsert on it and last write wins.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    user_id         TEXT NOT NULL,
    agent_name      TEXT NOT NULL,
    conversation_id TEXT NOT NULL,
    chat_history    JSONB NOT NULL DEFAULT '[]',
    metadata        JSONB,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, agent_name, conversation_id)
)`

// createListIndexSQL creates the index backing List: conversations for a
// (user, agent) pair ordered by recency.
const createListIndexSQL = `CREATE INDEX IF NOT EXISTS idx_%s_user_agent_updated
    ON %s (user_id, agent_name, updated_at DESC)`

// EnsureSchema creates the conversations table and its index if they do not
// already exist. This is a convenience helper for development and
// prototyping; production deployments should use proper migration tooling
// (goose, golang-migrate, etc.) to manage schema changes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	tableSQL := fmt.Sprintf(createTableSQL, s.tableName)
	if _, err := s.db.Exec(ctx, tableSQL); err != nil {
		return fmt.Errorf("pgstore: create table: %w", err)
	}

	indexSQL := fmt.Sprintf(createListIndexSQL, s.tableName, s.tableName)
	if _, err := s.db.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("pgstore: create list index: %w", err)
	}

	return nil
}
