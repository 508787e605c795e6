// Package pgstore implements conversation.Store on PostgreSQL via pgx.
// Conversations live one-per-row with JSONB history and metadata columns,
// upserted on the (user_id, agent_name, conversation_id) primary key.
package pgstore
