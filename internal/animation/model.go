package animation

import (
	"strings"
)

// Transition types as declared by TransitionType.
const (
	TransitionReturn = 0
	TransitionExit   = 1
	TransitionNone   = 2
)

// Character holds agent-wide settings.
type Character struct {
	Name            string `json:"name" yaml:"name"`
	Width           int    `json:"width" yaml:"width"`
	Height          int    `json:"height" yaml:"height"`
	DefaultDuration int    `json:"defaultFrameDurationMs" yaml:"defaultFrameDurationMs"`
}

// Layer is one image of a frame. ID is the resolved bundle-relative source.
type Layer struct {
	ID      string `json:"image" yaml:"image"`
	OffsetX int    `json:"offsetX,omitempty" yaml:"offsetX,omitempty"`
	OffsetY int    `json:"offsetY,omitempty" yaml:"offsetY,omitempty"`
}

// Cue is a sound reference. ID is the manifest key, normally the basename as
// written in the description, and Source the resolved bundle-relative waveform.
// Each Source has exactly one ID.
type Cue struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
}

// Branch is a probabilistic jump to another frame of the same animation.
type Branch struct {
	FrameIndex  int `json:"frameIndex" yaml:"frameIndex"`
	Probability int `json:"probability" yaml:"probability"`
}

// Frame is one step of an animation.
type Frame struct {
	Index      int      `json:"index" yaml:"index"`
	Images     []Layer  `json:"images,omitempty" yaml:"images,omitempty"`
	DurationMs int      `json:"durationMs" yaml:"durationMs"`
	Sounds     []Cue    `json:"sounds,omitempty" yaml:"sounds,omitempty"`
	ExitBranch *int     `json:"exitBranch,omitempty" yaml:"exitBranch,omitempty"`
	Branches   []Branch `json:"branches,omitempty" yaml:"branches,omitempty"`
}

// Animation is a named, ordered frame sequence.
type Animation struct {
	Name            string  `json:"name" yaml:"name"`
	TransitionType  int     `json:"transitionType" yaml:"transitionType"`
	ReturnAnimation string  `json:"returnAnimation,omitempty" yaml:"returnAnimation,omitempty"`
	Looping         bool    `json:"looping" yaml:"looping"`
	Frames          []Frame `json:"frames" yaml:"frames"`
}

// Transitions returns the animation-level transition table.
func (a Animation) Transitions() map[string]string {
	if a.ReturnAnimation == "" {
		return map[string]string{}
	}
	return map[string]string{"return": a.ReturnAnimation}
}

// State groups animation names.
type State struct {
	Name       string   `json:"name" yaml:"name"`
	Animations []string `json:"animations" yaml:"animations"`
}

// Model is the immutable result of Build.
type Model struct {
	Character  Character   `json:"character" yaml:"character"`
	Animations []Animation `json:"animations" yaml:"animations"`
	States     []State     `json:"states,omitempty" yaml:"states,omitempty"`

	byName map[string]int
}

// Stats summarises a model.
type Stats struct {
	Animations int `json:"animations"`
	Frames     int `json:"frames"`
	Images     int `json:"images"`
	Cues       int `json:"cues"`
	States     int `json:"states"`
}

// Lookup finds an animation by name, ignoring case.
func (m *Model) Lookup(name string) (Animation, bool) {
	idx, ok := m.byName[strings.ToLower(name)]
	if !ok {
		return Animation{}, false
	}
	return m.Animations[idx], true
}

// Images returns the distinct image identities in discovery order.
func (m *Model) Images() []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, anim := range m.Animations {
		for _, frame := range anim.Frames {
			for _, layer := range frame.Images {
				key := strings.ToLower(layer.ID)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				ids = append(ids, layer.ID)
			}
		}
	}
	return ids
}

// Cues returns the distinct cues, one per waveform source, in discovery order.
func (m *Model) Cues() []Cue {
	seen := map[string]struct{}{}
	var cues []Cue
	for _, anim := range m.Animations {
		for _, frame := range anim.Frames {
			for _, cue := range frame.Sounds {
				key := strings.ToLower(cue.Source)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				cues = append(cues, cue)
			}
		}
	}
	return cues
}

// Stats counts the model's contents.
func (m *Model) Stats() Stats {
	stats := Stats{
		Animations: len(m.Animations),
		Images:     len(m.Images()),
		Cues:       len(m.Cues()),
		States:     len(m.States),
	}
	for _, anim := range m.Animations {
		stats.Frames += len(anim.Frames)
	}
	return stats
}
