// Package domain defines the core domain models for the memory store.
package domain

import "fmt"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ParseRole converts a string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

// AuditEventType classifies an audit log entry.
type AuditEventType string

const (
	AuditEventRequest    AuditEventType = "REQUEST"
	AuditEventValidation AuditEventType = "VALIDATION"
	AuditEventCompletion AuditEventType = "COMPLETION"
	AuditEventViolation  AuditEventType = "VIOLATION"
)

// Valid reports whether the event type is one of the known values.
func (t AuditEventType) Valid() bool {
	switch t {
	case AuditEventRequest, AuditEventValidation, AuditEventCompletion, AuditEventViolation:
		return true
	}
	return false
}
