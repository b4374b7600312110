package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var exportableTables = map[string]bool{
	"messages":         true,
	"rag_context":      true,
	"user_preferences": true,
	"sessions":         true,
}

// ExportTable dumps one table to a Parquet backup file.
// POST /v1/export/:table
func (h *Handler) ExportTable(c echo.Context) error {
	ctx := c.Request().Context()
	table := c.Param("table")

	if !exportableTables[table] {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown table"})
	}

	path, err := h.service.ExportTable(ctx, table)
	if err != nil {
		h.log.Error("failed to export table", zap.String("table", table), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "export failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"table": table,
		"path":  path,
	})
}

// GetStats returns storage statistics.
// GET /v1/stats
func (h *Handler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.log.Error("failed to get stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get stats"})
	}

	return c.JSON(http.StatusOK, stats)
}
