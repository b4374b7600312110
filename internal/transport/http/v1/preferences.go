package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SetPreference upserts one preference. The body is the raw JSON value.
// PUT /v1/preferences/:key
func (h *Handler) SetPreference(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("key")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read body"})
	}
	if !json.Valid(body) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "value must be valid JSON"})
	}

	if err := h.service.SetPreference(ctx, key, json.RawMessage(body)); err != nil {
		h.log.Error("failed to set preference", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to set preference"})
	}

	return c.JSON(http.StatusOK, map[string]string{"key": key})
}

// GetPreference returns the stored value for a key.
// GET /v1/preferences/:key
func (h *Handler) GetPreference(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("key")

	value, err := h.service.GetPreference(ctx, key)
	if err != nil {
		h.log.Error("failed to get preference", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get preference"})
	}
	if value == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "preference not found"})
	}

	return c.JSONBlob(http.StatusOK, value)
}
