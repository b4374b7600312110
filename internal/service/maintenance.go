package service

import (
	"context"
	"path/filepath"

	"github.com/kzhou57/localmem/internal/domain"
)

// exportRequest carries the audit context for backup exports.
type exportRequest struct {
	Table string
	Path  string
}

func (r exportRequest) Flatten() map[string]string {
	return map[string]string{
		"table": r.Table,
		"path":  r.Path,
	}
}

// ExportTable dumps one table to a Parquet file under the configured export
// directory and audits the administrative action.
func (s *Service) ExportTable(ctx context.Context, table string) (string, error) {
	path := filepath.Join(s.config.ExportDir, table+".parquet")
	s.audit.LogRequest("", "export_table", exportRequest{Table: table, Path: path})
	if err := s.store.ExportTable(ctx, table, path); err != nil {
		return "", err
	}
	s.audit.LogCompletion("", "export_table", map[string]any{
		"table": table,
		"path":  path,
	})
	return path, nil
}

// Stats returns storage statistics.
func (s *Service) Stats(ctx context.Context) (*domain.StorageStats, error) {
	return s.store.Stats(ctx)
}
