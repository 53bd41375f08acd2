package sounds

import (
	"fmt"
	"sort"
)

// Entry describes one playable cue.
type Entry struct {
	// Artifact is the output-relative path of the transcoded file.
	Artifact   string `json:"artifact"`
	Source     string `json:"source"`
	DurationMs int    `json:"durationMs"`
}

// Manifest maps cue identifiers to artifacts.
type Manifest struct {
	Format string           `json:"format"`
	Cues   map[string]Entry `json:"cues"`
}

// Has reports whether cue made it into the manifest.
func (m Manifest) Has(cue string) bool {
	_, ok := m.Cues[cue]
	return ok
}

// Keys returns cue identifiers in lexical order.
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m.Cues))
	for k := range m.Cues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Artifacts returns the distinct artifact paths in lexical order.
func (m Manifest) Artifacts() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, entry := range m.Cues {
		if _, ok := seen[entry.Artifact]; ok {
			continue
		}
		seen[entry.Artifact] = struct{}{}
		out = append(out, entry.Artifact)
	}
	sort.Strings(out)
	return out
}

// Warning reports a cue dropped because its source could not be transcoded.
type Warning struct {
	Cue    string `json:"cue"`
	Source string `json:"source"`
	Err    error  `json:"-"`
}

func (w Warning) String() string {
	return fmt.Sprintf("cue %s (%s): %v", w.Cue, w.Source, w.Err)
}

// Message returns the failure text for display.
func (w Warning) Message() string {
	if w.Err == nil {
		return ""
	}
	return w.Err.Error()
}
