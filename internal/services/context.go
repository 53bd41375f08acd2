package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
	agentKey contextKey = "agent"
)

// WithRunID annotates context with the conversion run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithAgent annotates context with the agent being converted.
func WithAgent(ctx context.Context, agent string) context.Context {
	if agent == "" {
		return ctx
	}
	return context.WithValue(ctx, agentKey, agent)
}

// AgentFromContext returns the agent name if present.
func AgentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(agentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
