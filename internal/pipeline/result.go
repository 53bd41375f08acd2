package pipeline

import (
	"time"

	"agentpack/internal/animation"
	"agentpack/internal/sounds"
)

// Outputs lists the committed artifact paths.
type Outputs struct {
	Directory         string   `json:"directory"`
	AnimationManifest string   `json:"animationManifest"`
	SoundManifest     string   `json:"soundManifest"`
	Atlas             string   `json:"atlas"`
	SoundDirectory    string   `json:"soundDirectory,omitempty"`
	Clippy            []string `json:"clippy,omitempty"`
}

// Result summarises a successful run.
type Result struct {
	RunID      string           `json:"runId"`
	Agent      string           `json:"agent"`
	Bundle     string           `json:"bundle"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Stats      animation.Stats  `json:"stats"`
	AtlasSize  [2]int           `json:"atlasSize"`
	Sounds     int              `json:"sounds"`
	Warnings   []sounds.Warning `json:"warnings"`
	Outputs    Outputs          `json:"outputs"`
}

// WarningMessages returns the human-readable warning lines.
func (r *Result) WarningMessages() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		out = append(out, w.String())
	}
	return out
}
