package service

import (
	"context"
	"encoding/json"

	"github.com/kzhou57/localmem/internal/domain"
)

// sessionRequest carries the audit context for session operations.
type sessionRequest struct {
	SessionID string
	Operation string
}

func (r sessionRequest) Flatten() map[string]string {
	return map[string]string{
		"session_id": r.SessionID,
		"operation":  r.Operation,
	}
}

// CreateSession creates a session idempotently and audits the request.
func (s *Service) CreateSession(ctx context.Context, sessionID string, metadata json.RawMessage) error {
	s.audit.LogRequest(sessionID, "create_session", sessionRequest{SessionID: sessionID, Operation: "create_session"})
	if err := s.store.CreateSession(ctx, sessionID, metadata); err != nil {
		return err
	}
	s.audit.LogCompletion(sessionID, "create_session", nil)
	return nil
}

// GetSession returns the session, or nil when unknown.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

// TouchSession refreshes last_active; unknown sessions are a quiet no-op.
func (s *Service) TouchSession(ctx context.Context, sessionID string) (bool, error) {
	return s.store.TouchSession(ctx, sessionID)
}
