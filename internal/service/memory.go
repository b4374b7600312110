package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kzhou57/localmem/internal/domain"
)

// StoreMessage validates and appends one conversation turn. A rejected role
// is recorded as an audit violation before the error is returned.
func (s *Service) StoreMessage(ctx context.Context, msg *domain.Message) error {
	if !msg.Role.Valid() {
		s.audit.LogViolation(msg.SessionID, "invalid_role", map[string]any{
			"role": string(msg.Role),
		})
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}
	if msg.MessageID == "" {
		msg.MessageID = "msg_" + uuid.New().String()[:8]
	}
	if msg.Timestamp == "" {
		// Fixed-width so that string order matches time order.
		msg.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
	}

	if err := s.store.StoreMessage(ctx, msg); err != nil {
		return err
	}
	if _, err := s.store.TouchSession(ctx, msg.SessionID); err != nil {
		s.log.Warn("failed to touch session", zap.String("session_id", msg.SessionID), zap.Error(err))
	}
	s.audit.LogCompletion(msg.SessionID, "store_message", map[string]any{
		"message_id": msg.MessageID,
	})
	return nil
}

// SessionHistory returns all messages for a session in timestamp order.
func (s *Service) SessionHistory(ctx context.Context, sessionID string) ([]domain.Message, error) {
	return s.store.GetSessionHistory(ctx, sessionID)
}

// StoreRAGContext appends a retrieved document fragment.
func (s *Service) StoreRAGContext(ctx context.Context, rc *domain.RAGContext) error {
	if rc.ContextID == "" {
		rc.ContextID = "ctx_" + uuid.New().String()[:8]
	}
	if err := s.store.StoreRAGContext(ctx, rc); err != nil {
		return err
	}
	s.audit.LogCompletion(rc.SessionID, "store_rag_context", map[string]any{
		"context_id": rc.ContextID,
	})
	return nil
}

// SearchRAGContext performs the capped substring search.
func (s *Service) SearchRAGContext(ctx context.Context, sessionID, query string) ([]domain.RAGContext, error) {
	return s.store.SearchRAGContext(ctx, sessionID, query)
}
