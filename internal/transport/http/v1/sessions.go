package v1

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type createSessionRequest struct {
	SessionID string          `json:"session_id"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// CreateSession creates a session idempotently.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	if err := h.service.CreateSession(ctx, req.SessionID, req.Metadata); err != nil {
		h.log.Error("failed to create session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"session_id": req.SessionID})
}

// GetSession returns session metadata.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	session, err := h.service.GetSession(ctx, sessionID)
	if err != nil {
		h.log.Error("failed to get session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get session"})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, session)
}
