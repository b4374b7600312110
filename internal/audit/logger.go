// Package audit provides a tamper-evident, append-only log of
// security-sensitive actions.
package audit

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kzhou57/localmem/internal/domain"
)

// Escalator decides how an audit event is surfaced beyond the durable log.
// The input is a map with event_type, activity and session_id keys; the
// decision is "record" or "alert".
type Escalator interface {
	Evaluate(ctx context.Context, input any) (string, error)
}

// Logger is a caller-owned audit logger. One instance exclusively owns its
// in-memory buffer and the on-disk append target; concurrent instances
// pointing at the same directory must coordinate externally.
type Logger struct {
	mu        sync.Mutex
	dir       string
	file      string
	entries   []domain.AuditEntry
	fileBytes int64
	log       *zap.Logger
	escalator Escalator
}

// NewLogger creates an audit logger writing daily JSONL files under dir.
// Today's file, if present, is read back into the buffer so integrity
// verification and entry-id sequencing survive restarts.
func NewLogger(dir string, log *zap.Logger, escalator Escalator) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	l := &Logger{
		dir:       dir,
		file:      filepath.Join(dir, fmt.Sprintf("audit_%s.jsonl", time.Now().UTC().Format("20060102"))),
		log:       log,
		escalator: escalator,
	}
	if err := l.reload(); err != nil {
		return nil, err
	}
	l.log.Info("audit logger initialized",
		zap.String("file", l.file),
		zap.Int("reloaded_entries", len(l.entries)))
	return l, nil
}

// reload reads today's file back into the buffer.
func (l *Logger) reload() error {
	f, err := os.Open(l.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry domain.AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			l.log.Warn("skipping unparseable audit line", zap.Error(err))
			continue
		}
		l.entries = append(l.entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read audit file: %w", err)
	}
	if fi, err := f.Stat(); err == nil {
		l.fileBytes = fi.Size()
	}
	return nil
}

// File returns the path of the current day's append target.
func (l *Logger) File() string {
	return l.file
}

// ExpectedFileSize returns the byte size of the durable file after the last
// successful append, used by the tamper watcher to detect truncation.
func (l *Logger) ExpectedFileSize() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fileBytes
}

// LogRequest logs an incoming request. The context is flattened via the
// ContextFlattener capability; see flatten.go for the fallback rules.
func (l *Logger) LogRequest(sessionID, request string, reqCtx any) string {
	flat := flattenContext(reqCtx, l.log)
	entry := domain.AuditEntry{
		Timestamp: nowString(),
		SessionID: sessionID,
		EventType: domain.AuditEventRequest,
		Activity:  request,
		Context:   flat,
		User:      flat["authorized_by"],
	}
	return l.append(entry)
}

// LogValidation logs a validation result.
func (l *Logger) LogValidation(sessionID, validationType string, result map[string]any) string {
	entry := domain.AuditEntry{
		Timestamp: nowString(),
		SessionID: sessionID,
		EventType: domain.AuditEventValidation,
		Activity:  validationType,
		Context:   map[string]string{"validation_type": validationType},
		Result:    redact(result),
	}
	return l.append(entry)
}

// LogCompletion logs completion of an activity. Sensitive result fields are
// redacted before the entry is hashed, so the integrity hash covers only
// sanitized content.
func (l *Logger) LogCompletion(sessionID, activityType string, results map[string]any) string {
	entry := domain.AuditEntry{
		Timestamp: nowString(),
		SessionID: sessionID,
		EventType: domain.AuditEventCompletion,
		Activity:  activityType,
		Context:   map[string]string{"activity_type": activityType},
		Result:    redact(results),
	}
	return l.append(entry)
}

// LogViolation logs a policy or authorization violation.
func (l *Logger) LogViolation(sessionID, violationType string, details map[string]any) string {
	entry := domain.AuditEntry{
		Timestamp: nowString(),
		SessionID: sessionID,
		EventType: domain.AuditEventViolation,
		Activity:  "Violation: " + violationType,
		Context:   map[string]string{"violation_type": violationType},
		Result:    redact(details),
	}
	return l.append(entry)
}

// append hashes the entry into the chain, buffers it, writes the durable
// copy, and consults the escalation policy. A durable-write failure is
// logged and swallowed: the in-memory buffer still records the entry.
func (l *Logger) append(entry domain.AuditEntry) string {
	l.mu.Lock()
	if n := len(l.entries); n > 0 {
		entry.PrevHash = l.entries[n-1].IntegrityHash
	}
	entry.IntegrityHash = integrityHash(entry)
	l.entries = append(l.entries, entry)
	id := fmt.Sprintf("%s_%s_%d", entry.SessionID, entry.Timestamp, len(l.entries))

	if err := l.writeDurable(entry); err != nil {
		l.log.Error("failed to write audit log entry", zap.Error(err))
	}
	l.mu.Unlock()

	l.escalate(entry)
	return id
}

func (l *Logger) writeDurable(entry domain.AuditEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	f, err := os.OpenFile(l.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	if fi, err := f.Stat(); err == nil {
		l.fileBytes = fi.Size()
	}
	return nil
}

// escalate consults the policy engine and raises an operator-visible warning
// when the decision is "alert". Violations alert even when no policy engine
// is wired.
func (l *Logger) escalate(entry domain.AuditEntry) {
	decision := "record"
	if l.escalator != nil {
		input := map[string]any{
			"event_type": string(entry.EventType),
			"activity":   entry.Activity,
			"session_id": entry.SessionID,
		}
		d, err := l.escalator.Evaluate(context.Background(), input)
		if err != nil {
			l.log.Error("audit escalation policy failed", zap.Error(err))
		} else {
			decision = d
		}
	}
	if decision == "alert" || (l.escalator == nil && entry.EventType == domain.AuditEventViolation) {
		l.log.Warn("audit event escalated",
			zap.String("event_type", string(entry.EventType)),
			zap.String("activity", entry.Activity),
			zap.String("session_id", entry.SessionID))
	}
}

// VerifyIntegrity recomputes every buffered entry's hash and walks the chain
// links. In-place mutation, reordering and interior deletion all surface as
// corrupted entries.
func (l *Logger) VerifyIntegrity() *domain.IntegrityReport {
	l.mu.Lock()
	defer l.mu.Unlock()

	report := &domain.IntegrityReport{
		TotalEntries:     len(l.entries),
		CorruptedEntries: []domain.CorruptedEntry{},
	}
	prevHash := ""
	for i, entry := range l.entries {
		expected := integrityHash(entry)
		if entry.IntegrityHash == expected && entry.PrevHash == prevHash {
			report.VerifiedEntries++
		} else {
			report.CorruptedEntries = append(report.CorruptedEntries, domain.CorruptedEntry{
				Index:        i,
				Timestamp:    entry.Timestamp,
				ExpectedHash: expected,
				ActualHash:   entry.IntegrityHash,
			})
		}
		prevHash = entry.IntegrityHash
	}
	if report.TotalEntries == 0 {
		report.IntegrityScore = 100
	} else {
		report.IntegrityScore = float64(report.VerifiedEntries) / float64(report.TotalEntries) * 100
	}
	return report
}

// SessionLogs returns all buffered entries for a session in append order.
func (l *Logger) SessionLogs(sessionID string) []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	logs := []domain.AuditEntry{}
	for _, entry := range l.entries {
		if entry.SessionID == sessionID {
			logs = append(logs, entry)
		}
	}
	return logs
}

// Entries returns a copy of the full buffer in append order.
func (l *Logger) Entries() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// integrityHash canonicalizes the entry without its hash field (sorted map
// keys, stable field order) and applies SHA-256. The previous entry's hash is
// part of the input, forming the chain.
func integrityHash(entry domain.AuditEntry) string {
	canonical, err := json.Marshal(struct {
		Timestamp string            `json:"timestamp"`
		SessionID string            `json:"session_id"`
		EventType string            `json:"event_type"`
		Activity  string            `json:"activity"`
		Context   map[string]string `json:"context"`
		Result    map[string]any    `json:"result,omitempty"`
		User      string            `json:"user,omitempty"`
		PrevHash  string            `json:"prev_hash"`
	}{
		Timestamp: entry.Timestamp,
		SessionID: entry.SessionID,
		EventType: string(entry.EventType),
		Activity:  entry.Activity,
		Context:   entry.Context,
		Result:    entry.Result,
		User:      entry.User,
		PrevHash:  entry.PrevHash,
	})
	if err != nil {
		// Only unmarshalable result values can land here; those are rejected
		// earlier by redact's deep copy.
		return ""
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
