// Package policy provides the OPA-based audit escalation policy engine.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine deciding how audit events are surfaced.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.audit_policy.decision"),
		rego.Module("audit_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the audit escalation policy.
// Input should be a map with keys: event_type, activity, session_id.
// Returns: decision (record, alert), error
func (e *Engine) Evaluate(ctx context.Context, input any) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The default policy defines a default; an empty result means the
		// loaded policy does not, so fall back to plain recording.
		return "record", nil
	}

	val := results[0].Expressions[0].Value
	if s, ok := val.(string); ok {
		return s, nil
	}
	return "record", nil
}

// DefaultPolicy is the default escalation policy content: violations alert,
// everything else is recorded quietly.
const DefaultPolicy = `
package audit_policy

default decision = "record"

decision = "alert" {
	input.event_type == "VIOLATION"
}
`
