package history

import "time"

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusWarnings  Status = "succeeded_with_warnings"
	StatusFailed    Status = "failed"
)

// Run is one ledger row.
type Run struct {
	ID           string
	Agent        string
	Bundle       string
	Output       string
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	Animations   int
	Frames       int
	Images       int
	Cues         int
	Warnings     int
	ErrorKind    string
	ErrorMessage string
}

// Duration returns the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
