package audit

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kzhou57/localmem/internal/domain"
)

// Report generates a formatted audit report. An empty sessionID covers the
// whole buffer.
func (l *Logger) Report(sessionID string) string {
	var entries []domain.AuditEntry
	var title string
	if sessionID != "" {
		entries = l.SessionLogs(sessionID)
		title = "SESSION AUDIT REPORT - " + strings.ToUpper(sessionID)
	} else {
		entries = l.Entries()
		title = "COMPLETE AUDIT REPORT"
	}

	eventTypes := map[domain.AuditEventType]int{}
	var violations []domain.AuditEntry
	for _, entry := range entries {
		eventTypes[entry.EventType]++
		if entry.EventType == domain.AuditEventViolation {
			violations = append(violations, entry)
		}
	}

	integrity := l.VerifyIntegrity()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "## Audit Summary\n")
	fmt.Fprintf(&b, "- Report Generated: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Total Log Entries: %d\n", len(entries))
	fmt.Fprintf(&b, "- Audit File: %s\n", filepath.Base(l.File()))

	fmt.Fprintf(&b, "\n## Event Type Distribution\n")
	for _, t := range []domain.AuditEventType{
		domain.AuditEventRequest,
		domain.AuditEventValidation,
		domain.AuditEventCompletion,
		domain.AuditEventViolation,
	} {
		if count := eventTypes[t]; count > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", t, count)
		}
	}

	if len(violations) > 0 {
		fmt.Fprintf(&b, "\n## Violations\n%d violation(s) recorded:\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s: %s\n", v.Timestamp, v.Activity)
		}
	}

	fmt.Fprintf(&b, "\n## Integrity Verification\n")
	fmt.Fprintf(&b, "- Total Entries: %d\n", integrity.TotalEntries)
	fmt.Fprintf(&b, "- Verified Entries: %d\n", integrity.VerifiedEntries)
	fmt.Fprintf(&b, "- Integrity Score: %.1f%%\n", integrity.IntegrityScore)

	return b.String()
}
