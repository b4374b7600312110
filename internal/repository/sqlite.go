package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kzhou57/localmem/internal/domain"
)

// searchLimit caps substring search results.
const searchLimit = 10

// SQLiteStore implements Store using SQLite. All data stays on the local
// machine; the store opens no network connections of any kind.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store at the given DSN.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db, path: filePath(dsn)}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// filePath strips the sqlite DSN decoration down to the on-disk path, used
// only for size reporting. In-memory databases report size zero.
func filePath(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

// migrate runs database migrations. Four independent tables rather than one
// polymorphic table: the query patterns differ enough to want separate
// indexes per table.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, timestamp)`,
		`CREATE TABLE IF NOT EXISTS rag_context (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			document TEXT NOT NULL,
			embedding TEXT,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rag_context_session ON rag_context(session_id)`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			last_active TEXT NOT NULL,
			metadata TEXT
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LocalOnly always returns true: there is no code path that leaves the
// local machine.
func (s *SQLiteStore) LocalOnly() bool {
	return true
}

// StoreMessage appends one message row. Messages are never updated or deleted.
func (s *SQLiteStore) StoreMessage(ctx context.Context, msg *domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, timestamp, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.MessageID, msg.SessionID, msg.Role, msg.Content, msg.Timestamp, nullStringBytes(msg.Metadata))
	if err != nil {
		return storageErr("store message", err)
	}
	return nil
}

// GetSessionHistory returns all messages for a session ordered by ascending
// timestamp string comparison. Unknown sessions yield an empty slice.
func (s *SQLiteStore) GetSessionHistory(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, timestamp, metadata FROM messages WHERE session_id = ? ORDER BY timestamp ASC`,
		sessionID)
	if err != nil {
		return nil, storageErr("get session history", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var metadata sql.NullString
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Timestamp, &metadata); err != nil {
			return nil, storageErr("scan message", err)
		}
		if metadata.Valid {
			msg.Metadata = json.RawMessage(metadata.String)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get session history", err)
	}
	return messages, nil
}

// StoreRAGContext appends one context row. No dedup, no embedding validation.
func (s *SQLiteStore) StoreRAGContext(ctx context.Context, rc *domain.RAGContext) error {
	var embedding sql.NullString
	if rc.Embedding != nil {
		b, err := json.Marshal(rc.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		embedding = sql.NullString{String: string(b), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rag_context (id, session_id, document, embedding, metadata) VALUES (?, ?, ?, ?, ?)`,
		rc.ContextID, rc.SessionID, rc.Document, embedding, nullStringBytes(rc.Metadata))
	if err != nil {
		return storageErr("store rag context", err)
	}
	return nil
}

// SearchRAGContext matches documents by case-insensitive substring, newest
// insertion first, capped at 10 results. Embeddings are returned verbatim but
// play no part in matching or ranking.
func (s *SQLiteStore) SearchRAGContext(ctx context.Context, sessionID, query string) ([]domain.RAGContext, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, document, embedding, metadata
		 FROM rag_context
		 WHERE session_id = ? AND LOWER(document) LIKE '%' || LOWER(?) || '%'
		 ORDER BY rowid DESC
		 LIMIT ?`,
		sessionID, query, searchLimit)
	if err != nil {
		return nil, storageErr("search rag context", err)
	}
	defer rows.Close()

	contexts := []domain.RAGContext{}
	for rows.Next() {
		var rc domain.RAGContext
		var embedding, metadata sql.NullString
		if err := rows.Scan(&rc.ContextID, &rc.SessionID, &rc.Document, &embedding, &metadata); err != nil {
			return nil, storageErr("scan rag context", err)
		}
		if embedding.Valid {
			if err := json.Unmarshal([]byte(embedding.String), &rc.Embedding); err != nil {
				return nil, fmt.Errorf("unmarshal embedding: %w", err)
			}
		}
		if metadata.Valid {
			rc.Metadata = json.RawMessage(metadata.String)
		}
		contexts = append(contexts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("search rag context", err)
	}
	return contexts, nil
}

// SetPreference upserts a preference, always refreshing updated_at.
// Last write wins; no history is retained.
func (s *SQLiteStore) SetPreference(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_preferences (key, value, updated_at) VALUES (?, ?, ?)`,
		key, string(value), nowString())
	if err != nil {
		return storageErr("set preference", err)
	}
	return nil
}

// GetPreference returns the value for a key, or nil when absent.
func (s *SQLiteStore) GetPreference(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM user_preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get preference", err)
	}
	return json.RawMessage(value), nil
}

// CreateSession creates a session if it does not exist. Re-creating an
// existing session keeps created_at and metadata and only refreshes
// last_active.
func (s *SQLiteStore) CreateSession(ctx context.Context, sessionID string, metadata json.RawMessage) error {
	now := nowString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, created_at, last_active, metadata) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET last_active = excluded.last_active`,
		sessionID, now, now, nullStringBytes(metadata))
	if err != nil {
		return storageErr("create session", err)
	}
	return nil
}

// GetSession retrieves a session by ID, or nil when unknown.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var metadata sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, created_at, last_active, metadata FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.CreatedAt, &session.LastActive, &metadata)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get session", err)
	}
	if metadata.Valid {
		session.Metadata = json.RawMessage(metadata.String)
	}
	return &session, nil
}

// TouchSession updates last_active only. Returns false when the session is
// unknown; that is not an error.
func (s *SQLiteStore) TouchSession(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_active = ? WHERE session_id = ?`,
		nowString(), sessionID)
	if err != nil {
		return false, storageErr("touch session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("touch session", err)
	}
	return affected > 0, nil
}

// Stats returns row counts and the database size on disk.
func (s *SQLiteStore) Stats(ctx context.Context) (*domain.StorageStats, error) {
	stats := &domain.StorageStats{}
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM messages`, &stats.TotalMessages},
		{`SELECT COUNT(*) FROM rag_context`, &stats.TotalRAGEntries},
		{`SELECT COUNT(*) FROM sessions`, &stats.TotalSessions},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, storageErr("stats", err)
		}
	}
	if s.path != "" {
		if fi, err := os.Stat(s.path); err == nil {
			stats.DatabaseBytes = fi.Size()
		}
	}
	return stats, nil
}

// nowString uses a fixed-width nanosecond format so that lexicographic order
// of generated timestamps matches chronological order. RFC3339Nano trims
// trailing zeros and breaks that property.
func nowString() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorageUnavailable, err))
}

func nullStringBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
