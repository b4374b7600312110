package audit

import "strings"

// RedactionMarker replaces sensitive values before persistence and hashing.
// The replacement is irreversible.
const RedactionMarker = "[REDACTED]"

// sensitiveSubstrings flag a key as sensitive when it contains any of them,
// case-insensitively, at any nesting depth.
var sensitiveSubstrings = []string{
	"password", "token", "key", "secret", "credential",
	"api_key", "access_token", "private_key",
}

// redact returns a deep copy of m with sensitive values replaced by the
// redaction marker. The input is never mutated.
func redact(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sensitiveKey(k) {
			out[k] = RedactionMarker
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return redact(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

func sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
