package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kzhou57/localmem/internal/domain"
	"github.com/kzhou57/localmem/internal/service"
)

type storeMessageRequest struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Timestamp string          `json:"timestamp,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// StoreMessage appends one message to a session.
// POST /v1/sessions/:session_id/messages
func (h *Handler) StoreMessage(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var req storeMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	msg := &domain.Message{
		SessionID: sessionID,
		Role:      domain.Role(req.Role),
		Content:   req.Content,
		Timestamp: req.Timestamp,
		Metadata:  req.Metadata,
	}
	if err := h.service.StoreMessage(ctx, msg); err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		h.log.Error("failed to store message", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store message"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"message_id": msg.MessageID})
}

// GetSessionHistory returns all messages for a session in timestamp order.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionHistory(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	messages, err := h.service.SessionHistory(ctx, sessionID)
	if err != nil {
		h.log.Error("failed to get session history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get session history"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"messages": messages,
	})
}

type storeContextRequest struct {
	Document  string          `json:"document"`
	Embedding []float64       `json:"embedding,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// StoreRAGContext appends a document fragment to a session.
// POST /v1/sessions/:session_id/context
func (h *Handler) StoreRAGContext(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var req storeContextRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Document == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "document is required"})
	}

	rc := &domain.RAGContext{
		SessionID: sessionID,
		Document:  req.Document,
		Embedding: req.Embedding,
		Metadata:  req.Metadata,
	}
	if err := h.service.StoreRAGContext(ctx, rc); err != nil {
		h.log.Error("failed to store rag context", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store context"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"context_id": rc.ContextID})
}

// SearchRAGContext runs the capped substring search over a session's documents.
// GET /v1/sessions/:session_id/context?q=
func (h *Handler) SearchRAGContext(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")
	query := c.QueryParam("q")

	contexts, err := h.service.SearchRAGContext(ctx, sessionID, query)
	if err != nil {
		h.log.Error("failed to search rag context", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to search context"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"contexts": contexts,
	})
}
