// Package v1 provides the HTTP handlers for the memory service API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kzhou57/localmem/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	log     *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Session API
	e.POST("/v1/sessions", h.CreateSession)
	e.GET("/v1/sessions/:session_id", h.GetSession)

	// Memory API (append-only: no PUT/DELETE on messages)
	e.POST("/v1/sessions/:session_id/messages", h.StoreMessage)
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionHistory)
	e.POST("/v1/sessions/:session_id/context", h.StoreRAGContext)
	e.GET("/v1/sessions/:session_id/context", h.SearchRAGContext)

	// Preference API
	e.PUT("/v1/preferences/:key", h.SetPreference)
	e.GET("/v1/preferences/:key", h.GetPreference)

	// Maintenance API
	e.POST("/v1/export/:table", h.ExportTable)
	e.GET("/v1/stats", h.GetStats)

	// Audit API
	e.GET("/v1/sessions/:session_id/audit", h.GetSessionAudit)
	e.GET("/v1/audit/verify", h.VerifyAudit)
	e.GET("/v1/audit/report", h.GetAuditReport)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "healthy",
		"version":    "0.1.0",
		"local_only": h.service.LocalOnly(),
	})
}
