package domain

// AuditEntry is one immutable event in the audit trail. PrevHash links each
// entry to its predecessor so deletion or reordering breaks the chain, not
// just in-place edits.
type AuditEntry struct {
	Timestamp     string            `json:"timestamp"`
	SessionID     string            `json:"session_id"`
	EventType     AuditEventType    `json:"event_type"`
	Activity      string            `json:"activity"`
	Context       map[string]string `json:"context"`
	Result        map[string]any    `json:"result,omitempty"`
	User          string            `json:"user,omitempty"`
	PrevHash      string            `json:"prev_hash"`
	IntegrityHash string            `json:"integrity_hash"`
}

// ContextFlattener is implemented by context objects that can be reduced to a
// flat string map for audit logging.
type ContextFlattener interface {
	Flatten() map[string]string
}

// CorruptedEntry describes a single integrity failure found during verification.
type CorruptedEntry struct {
	Index        int    `json:"entry_index"`
	Timestamp    string `json:"timestamp"`
	ExpectedHash string `json:"expected_hash"`
	ActualHash   string `json:"actual_hash"`
}

// IntegrityReport is the result of verifying the whole log buffer.
type IntegrityReport struct {
	TotalEntries     int              `json:"total_entries"`
	VerifiedEntries  int              `json:"verified_entries"`
	CorruptedEntries []CorruptedEntry `json:"corrupted_entries"`
	IntegrityScore   float64          `json:"integrity_score"`
}
