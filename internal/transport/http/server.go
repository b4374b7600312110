// Package http provides the HTTP server for the memory service.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kzhou57/localmem/internal/service"
	v1 "github.com/kzhou57/localmem/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server. The API is a thin shim
// over the record store and the audit log; messages are append-only, so no
// update or delete routes exist.
func NewServer(svc *service.Service, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Handlers
	v1Handler := v1.NewHandler(svc, log)
	v1Handler.RegisterRoutes(e)

	return e
}
