package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kzhou57/localmem/internal/audit"
	"github.com/kzhou57/localmem/internal/config"
	"github.com/kzhou57/localmem/internal/policy"
	store "github.com/kzhou57/localmem/internal/repository"
	"github.com/kzhou57/localmem/internal/service"
	transport "github.com/kzhou57/localmem/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting localmem",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("database", cfg.DatabaseURL),
		zap.String("audit_dir", cfg.AuditLogDir))

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		logger.Fatal("failed to create export dir", zap.Error(err))
	}

	// Initialize audit escalation policy
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		logger.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	// Initialize audit logger and its tamper watcher
	auditLog, err := audit.NewLogger(cfg.AuditLogDir, logger, policyEngine)
	if err != nil {
		logger.Fatal("failed to initialize audit logger", zap.Error(err))
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	watcher, err := audit.NewWatcher(auditLog, logger)
	if err != nil {
		logger.Fatal("failed to initialize audit watcher", zap.Error(err))
	}
	if err := watcher.Watch(watchCtx); err != nil {
		logger.Fatal("failed to start audit watcher", zap.Error(err))
	}
	defer watcher.Stop()

	// Initialize service and server
	svc := service.New(db, auditLog, cfg, logger)
	server := transport.NewServer(svc, logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("stopped")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
