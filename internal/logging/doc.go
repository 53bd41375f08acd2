// Package logging assembles structured slog loggers and formatting helpers used
// across agentpack.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with run identifiers, agent names, and stages. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the pipeline.
package logging
