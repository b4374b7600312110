package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetSessionAudit returns all audit entries for a session.
// GET /v1/sessions/:session_id/audit
func (h *Handler) GetSessionAudit(c echo.Context) error {
	sessionID := c.Param("session_id")

	return c.JSON(http.StatusOK, map[string]any{
		"entries": h.service.Audit().SessionLogs(sessionID),
	})
}

// VerifyAudit verifies the integrity of the audit log buffer.
// GET /v1/audit/verify
func (h *Handler) VerifyAudit(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Audit().VerifyIntegrity())
}

// GetAuditReport returns the formatted audit report.
// GET /v1/audit/report?session_id=
func (h *Handler) GetAuditReport(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	return c.String(http.StatusOK, h.service.Audit().Report(sessionID))
}
