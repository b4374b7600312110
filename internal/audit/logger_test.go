package audit

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kzhou57/localmem/internal/domain"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := NewLogger(t.TempDir(), zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("failed to create audit logger: %v", err)
	}
	return l
}

type testRequestContext struct {
	authorizedBy string
	purpose      string
}

func (c testRequestContext) Flatten() map[string]string {
	return map[string]string{
		"authorized_by": c.authorizedBy,
		"purpose":       c.purpose,
	}
}

func TestVerifyIntegrityClean(t *testing.T) {
	l := newTestLogger(t)

	l.LogRequest("s1", "create_session", testRequestContext{authorizedBy: "alice", purpose: "test"})
	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m1"})
	l.LogViolation("s1", "invalid_role", map[string]any{"role": "root"})

	report := l.VerifyIntegrity()
	if report.TotalEntries != 3 || report.VerifiedEntries != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.IntegrityScore != 100 {
		t.Fatalf("expected 100%% integrity, got %.1f", report.IntegrityScore)
	}
	if len(report.CorruptedEntries) != 0 {
		t.Fatalf("expected no corrupted entries, got %+v", report.CorruptedEntries)
	}
}

func TestVerifyIntegrityEmptyBuffer(t *testing.T) {
	l := newTestLogger(t)

	report := l.VerifyIntegrity()
	if report.TotalEntries != 0 || report.IntegrityScore != 100 {
		t.Fatalf("empty log must verify clean: %+v", report)
	}
}

func TestLogRequestRecordsUser(t *testing.T) {
	l := newTestLogger(t)

	l.LogRequest("s1", "export_table", testRequestContext{authorizedBy: "operator", purpose: "backup"})

	entries := l.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].User != "operator" {
		t.Fatalf("expected user from authorized_by, got %q", entries[0].User)
	}
	if entries[0].Context["purpose"] != "backup" {
		t.Fatalf("flattened context missing: %+v", entries[0].Context)
	}
	if entries[0].EventType != domain.AuditEventRequest {
		t.Fatalf("unexpected event type: %s", entries[0].EventType)
	}
}

func TestRedactionHappensBeforeHashing(t *testing.T) {
	l := newTestLogger(t)

	l.LogCompletion("s1", "store_message", map[string]any{
		"message_id": "m1",
		"api_token":  "supersecret",
	})

	entries := l.Entries()
	if entries[0].Result["api_token"] != RedactionMarker {
		t.Fatalf("expected redacted token, got %v", entries[0].Result["api_token"])
	}
	// The hash must cover the sanitized entry, not the raw input.
	report := l.VerifyIntegrity()
	if report.VerifiedEntries != 1 {
		t.Fatalf("hash does not match redacted entry: %+v", report)
	}
}

func TestVerifyIntegrityDetectsMutation(t *testing.T) {
	l := newTestLogger(t)

	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m1"})
	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m2"})
	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m3"})

	l.entries[1].Activity = "delete_message"

	report := l.VerifyIntegrity()
	if report.VerifiedEntries != 2 {
		t.Fatalf("expected 2 verified entries, got %d", report.VerifiedEntries)
	}
	if len(report.CorruptedEntries) != 1 || report.CorruptedEntries[0].Index != 1 {
		t.Fatalf("expected entry 1 flagged, got %+v", report.CorruptedEntries)
	}
	if report.IntegrityScore >= 100 {
		t.Fatalf("score must drop below 100, got %.1f", report.IntegrityScore)
	}
}

func TestVerifyIntegrityDetectsDeletion(t *testing.T) {
	l := newTestLogger(t)

	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m1"})
	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m2"})
	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m3"})

	// Removing an interior entry breaks the successor's chain link even though
	// every remaining entry still hashes correctly on its own.
	l.entries = append(l.entries[:1], l.entries[2:]...)

	report := l.VerifyIntegrity()
	if len(report.CorruptedEntries) == 0 {
		t.Fatal("interior deletion went undetected")
	}
}

func TestVerifyIntegrityDetectsReordering(t *testing.T) {
	l := newTestLogger(t)

	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m1"})
	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m2"})

	l.entries[0], l.entries[1] = l.entries[1], l.entries[0]

	report := l.VerifyIntegrity()
	if len(report.CorruptedEntries) == 0 {
		t.Fatal("reordering went undetected")
	}
}

func TestReloadAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	l1, err := NewLogger(dir, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("failed to create audit logger: %v", err)
	}
	l1.LogCompletion("s1", "store_message", map[string]any{"message_id": "m1"})
	l1.LogViolation("s1", "invalid_role", map[string]any{"role": "root"})

	// A second logger over the same directory must pick up today's file.
	l2, err := NewLogger(dir, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("failed to reopen audit logger: %v", err)
	}
	if got := len(l2.Entries()); got != 2 {
		t.Fatalf("expected 2 reloaded entries, got %d", got)
	}

	report := l2.VerifyIntegrity()
	if report.VerifiedEntries != 2 {
		t.Fatalf("reloaded entries failed verification: %+v", report)
	}

	// The chain must continue from the reloaded tail.
	l2.LogCompletion("s1", "store_message", map[string]any{"message_id": "m2"})
	entries := l2.Entries()
	if entries[2].PrevHash != entries[1].IntegrityHash {
		t.Fatal("chain not continued after reload")
	}
}

func TestSessionLogsFilter(t *testing.T) {
	l := newTestLogger(t)

	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m1"})
	l.LogCompletion("s2", "store_message", map[string]any{"message_id": "m2"})
	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m3"})

	logs := l.SessionLogs("s1")
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries for s1, got %d", len(logs))
	}
	for _, entry := range logs {
		if entry.SessionID != "s1" {
			t.Fatalf("foreign entry in session logs: %+v", entry)
		}
	}
}

func TestReportIncludesViolations(t *testing.T) {
	l := newTestLogger(t)

	l.LogCompletion("s1", "store_message", map[string]any{"message_id": "m1"})
	l.LogViolation("s1", "invalid_role", map[string]any{"role": "root"})

	report := l.Report("s1")
	if report == "" {
		t.Fatal("empty report")
	}
	for _, want := range []string{"SESSION AUDIT REPORT - S1", "Violation: invalid_role", "Integrity Score: 100.0%"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
