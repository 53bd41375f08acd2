package logging

import (
	"context"
	"log/slog"

	"agentpack/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldAgent is the standardized structured logging key for the agent being converted.
	FieldAgent = "agent"
	// FieldEventType tags log lines that mark pipeline milestones.
	FieldEventType = "event_type"
	// FieldErrorKind carries services.Kind of a failure.
	FieldErrorKind = "error_kind"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if agent, ok := services.AgentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAgent, agent))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

// WithStage is a convenience wrapper around services.WithStage.
func WithStage(ctx context.Context, stage string) context.Context {
	return services.WithStage(ctx, stage)
}
