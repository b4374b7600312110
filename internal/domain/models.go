package domain

import "encoding/json"

// Message represents a single turn in a conversation. Messages are immutable
// once stored; there is no update or delete.
type Message struct {
	MessageID string          `json:"message_id"`
	SessionID string          `json:"session_id"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	Timestamp string          `json:"timestamp"` // caller-supplied ISO-8601
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// RAGContext represents a retrieved document fragment tied to a session.
// Duplicates are allowed and accumulate; the embedding is stored verbatim
// and never validated or used for ranking.
type RAGContext struct {
	ContextID string          `json:"context_id"`
	SessionID string          `json:"session_id"`
	Document  string          `json:"document"`
	Embedding []float64       `json:"embedding,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// Preference is a single named setting. Keys are globally unique; writes are
// last-write-wins upserts with no history.
type Preference struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}

// Session holds metadata about a conversation session.
type Session struct {
	SessionID  string          `json:"session_id"`
	CreatedAt  string          `json:"created_at"`
	LastActive string          `json:"last_active"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// StorageStats summarizes the on-disk state of the store.
type StorageStats struct {
	TotalMessages   int   `json:"total_messages"`
	TotalRAGEntries int   `json:"total_rag_entries"`
	TotalSessions   int   `json:"total_sessions"`
	DatabaseBytes   int64 `json:"database_size_bytes"`
}
