// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kzhou57/localmem/internal/domain"
)

// Sentinel errors for the failure taxonomy. Absent rows are empty results,
// never errors.
var (
	// ErrStorageUnavailable marks disk or connection failures. Fatal to the
	// call, not the process.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrExportFailed marks a failed backup export.
	ErrExportFailed = errors.New("export failed")
)

// Store defines the interface for local data persistence.
type Store interface {
	// Message operations (append-only)
	StoreMessage(ctx context.Context, msg *domain.Message) error
	GetSessionHistory(ctx context.Context, sessionID string) ([]domain.Message, error)

	// RAG context operations (append-only)
	StoreRAGContext(ctx context.Context, rc *domain.RAGContext) error
	SearchRAGContext(ctx context.Context, sessionID, query string) ([]domain.RAGContext, error)

	// Preference operations (upsert)
	SetPreference(ctx context.Context, key string, value json.RawMessage) error
	GetPreference(ctx context.Context, key string) (json.RawMessage, error)

	// Session operations
	CreateSession(ctx context.Context, sessionID string, metadata json.RawMessage) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	TouchSession(ctx context.Context, sessionID string) (bool, error)

	// Maintenance
	ExportTable(ctx context.Context, table, path string) error
	Stats(ctx context.Context) (*domain.StorageStats, error)

	// LocalOnly is a documented guarantee: the store never makes outbound
	// network calls.
	LocalOnly() bool

	// Lifecycle
	Close() error
}
