package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Parquet row schemas for backup exports, one per table. JSON columns are
// exported as their stored text.
type messageRow struct {
	ID        string `parquet:"id"`
	SessionID string `parquet:"session_id"`
	Role      string `parquet:"role"`
	Content   string `parquet:"content"`
	Timestamp string `parquet:"timestamp"`
	Metadata  string `parquet:"metadata,optional"`
}

type ragContextRow struct {
	ID        string `parquet:"id"`
	SessionID string `parquet:"session_id"`
	Document  string `parquet:"document"`
	Embedding string `parquet:"embedding,optional"`
	Metadata  string `parquet:"metadata,optional"`
}

type preferenceRow struct {
	Key       string `parquet:"key"`
	Value     string `parquet:"value"`
	UpdatedAt string `parquet:"updated_at"`
}

type sessionRow struct {
	SessionID  string `parquet:"session_id"`
	CreatedAt  string `parquet:"created_at"`
	LastActive string `parquet:"last_active"`
	Metadata   string `parquet:"metadata,optional"`
}

// ExportTable dumps an entire table to a Parquet file for local backup.
// Unknown table names and write failures report ErrExportFailed.
func (s *SQLiteStore) ExportTable(ctx context.Context, table, path string) error {
	var err error
	switch table {
	case "messages":
		err = s.exportMessages(ctx, path)
	case "rag_context":
		err = s.exportRAGContext(ctx, path)
	case "user_preferences":
		err = s.exportPreferences(ctx, path)
	case "sessions":
		err = s.exportSessions(ctx, path)
	default:
		return fmt.Errorf("%w: unknown table %q", ErrExportFailed, table)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", table, errors.Join(ErrExportFailed, err))
	}
	return nil
}

func (s *SQLiteStore) exportMessages(ctx context.Context, path string) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, timestamp, metadata FROM messages ORDER BY rowid`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var out []messageRow
	for rows.Next() {
		var r messageRow
		var metadata sql.NullString
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Role, &r.Content, &r.Timestamp, &metadata); err != nil {
			return err
		}
		r.Metadata = metadata.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeParquetFile(path, out)
}

func (s *SQLiteStore) exportRAGContext(ctx context.Context, path string) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, document, embedding, metadata FROM rag_context ORDER BY rowid`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var out []ragContextRow
	for rows.Next() {
		var r ragContextRow
		var embedding, metadata sql.NullString
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Document, &embedding, &metadata); err != nil {
			return err
		}
		r.Embedding = embedding.String
		r.Metadata = metadata.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeParquetFile(path, out)
}

func (s *SQLiteStore) exportPreferences(ctx context.Context, path string) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM user_preferences ORDER BY key`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var out []preferenceRow
	for rows.Next() {
		var r preferenceRow
		if err := rows.Scan(&r.Key, &r.Value, &r.UpdatedAt); err != nil {
			return err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeParquetFile(path, out)
}

func (s *SQLiteStore) exportSessions(ctx context.Context, path string) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, created_at, last_active, metadata FROM sessions ORDER BY session_id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var out []sessionRow
	for rows.Next() {
		var r sessionRow
		var metadata sql.NullString
		if err := rows.Scan(&r.SessionID, &r.CreatedAt, &r.LastActive, &metadata); err != nil {
			return err
		}
		r.Metadata = metadata.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeParquetFile(path, out)
}

// writeParquetFile serializes rows into a Parquet file with Snappy compression.
func writeParquetFile[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	w := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("parquet write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("parquet close: %w", err)
	}
	return f.Close()
}
