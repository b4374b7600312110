package audit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kzhou57/localmem/internal/domain"
)

// flattenContext reduces a request context to a flat string map. Callers are
// expected to pass a domain.ContextFlattener; a plain string map is accepted
// as-is, and anything else is recorded as a type placeholder rather than
// failing the log write.
func flattenContext(v any, log *zap.Logger) map[string]string {
	switch t := v.(type) {
	case nil:
		return map[string]string{}
	case domain.ContextFlattener:
		flat := t.Flatten()
		if flat == nil {
			return map[string]string{}
		}
		return flat
	case map[string]string:
		return t
	default:
		log.Warn("context does not implement Flatten", zap.String("type", fmt.Sprintf("%T", v)))
		return map[string]string{"context_type": fmt.Sprintf("%T", v)}
	}
}
