// Package service composes the record store and the audit log into the
// operations exposed over HTTP. Store calls and audit entries stay logically
// independent; the service is merely the one place that issues both.
package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kzhou57/localmem/internal/audit"
	"github.com/kzhou57/localmem/internal/config"
	store "github.com/kzhou57/localmem/internal/repository"
)

// ErrInvalidRole rejects messages whose role is not a known value.
var ErrInvalidRole = errors.New("invalid role")

type Service struct {
	store  store.Store
	audit  *audit.Logger
	config *config.Config
	log    *zap.Logger
}

func New(store store.Store, auditLog *audit.Logger, cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		store:  store,
		audit:  auditLog,
		config: cfg,
		log:    log,
	}
}

// Audit exposes the audit logger for read-side handlers.
func (s *Service) Audit() *audit.Logger {
	return s.audit
}

// LocalOnly reports the store's documented no-network guarantee.
func (s *Service) LocalOnly() bool {
	return s.store.LocalOnly()
}
