package manifest

import (
	"fmt"

	"agentpack/internal/animation"
	"agentpack/internal/atlas"
	"agentpack/internal/services"
	"agentpack/internal/sounds"
)

// AtlasInfo names the atlas bitmap and its size.
type AtlasInfo struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Offset is a layer displacement relative to the frame origin.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Overlay is an extra image layer drawn over the base image.
type Overlay struct {
	AtlasRect atlas.Rect `json:"atlasRect"`
	Offset    *Offset    `json:"offset,omitempty"`
}

// BranchTarget is one probabilistic branch.
type BranchTarget struct {
	FrameIndex int `json:"frameIndex"`
	Weight     int `json:"weight"`
}

// Branching lists a frame's probabilistic branches.
type Branching struct {
	Branches []BranchTarget `json:"branches"`
}

// Frame is one emitted frame.
type Frame struct {
	AtlasRect  *atlas.Rect `json:"atlasRect,omitempty"`
	DurationMs int         `json:"durationMs"`
	SoundCues  []string    `json:"soundCues"`
	ExitBranch *int        `json:"exitBranch,omitempty"`
	Branching  *Branching  `json:"branching,omitempty"`
	Offset     *Offset     `json:"offset,omitempty"`
	Overlays   []Overlay   `json:"overlays,omitempty"`
}

// Animation is one emitted animation.
type Animation struct {
	TransitionType  int               `json:"transitionType"`
	ReturnAnimation string            `json:"returnAnimation,omitempty"`
	Transitions     map[string]string `json:"transitions"`
	Looping         bool              `json:"looping"`
	Frames          []Frame           `json:"frames"`
}

// Document is the animation manifest.
type Document struct {
	Agent      string               `json:"agent"`
	Atlas      AtlasInfo            `json:"atlas"`
	FrameSize  [2]int               `json:"frameSize"`
	Sounds     string               `json:"sounds,omitempty"`
	States     map[string][]string  `json:"states,omitempty"`
	Animations map[string]Animation `json:"animations"`
}

// Inputs are the three joined sources plus naming.
type Inputs struct {
	Agent      string
	AtlasImage string
	// SoundManifest is the file name of the sound manifest, recorded for runtimes.
	SoundManifest string
	Model         *animation.Model
	Layout        atlas.Layout
	Sounds        sounds.Manifest
}

// Emit builds the animation manifest document.
func Emit(in Inputs) (*Document, error) {
	if in.Model == nil {
		return nil, fmt.Errorf("emit manifest: model is required")
	}
	agent := in.Agent
	if agent == "" {
		agent = in.Model.Character.Name
	}

	doc := &Document{
		Agent:      agent,
		Atlas:      AtlasInfo{Image: in.AtlasImage, Width: in.Layout.Width, Height: in.Layout.Height},
		FrameSize:  frameSize(in.Model, in.Layout),
		Sounds:     in.SoundManifest,
		Animations: make(map[string]Animation, len(in.Model.Animations)),
	}
	if len(in.Model.States) > 0 {
		doc.States = make(map[string][]string, len(in.Model.States))
		for _, state := range in.Model.States {
			doc.States[state.Name] = append([]string{}, state.Animations...)
		}
	}

	for _, anim := range in.Model.Animations {
		out := Animation{
			TransitionType:  anim.TransitionType,
			ReturnAnimation: anim.ReturnAnimation,
			Transitions:     anim.Transitions(),
			Looping:         anim.Looping,
			Frames:          make([]Frame, 0, len(anim.Frames)),
		}
		for _, frame := range anim.Frames {
			emitted, err := emitFrame(anim.Name, frame, in.Layout, in.Sounds)
			if err != nil {
				return nil, err
			}
			out.Frames = append(out.Frames, emitted)
		}
		doc.Animations[anim.Name] = out
	}
	return doc, nil
}

func emitFrame(animName string, frame animation.Frame, layout atlas.Layout, sm sounds.Manifest) (Frame, error) {
	out := Frame{DurationMs: frame.DurationMs, SoundCues: []string{}}

	for i, layer := range frame.Images {
		rect, ok := layout.Rects[layer.ID]
		if !ok {
			return Frame{}, services.Wrap(services.ErrUnresolvedFrameReference, "manifest", "emit",
				fmt.Sprintf("animation %q frame %d image %s has no atlas rect", animName, frame.Index, layer.ID), nil)
		}
		offset := layerOffset(layer)
		if i == 0 {
			r := rect
			out.AtlasRect = &r
			out.Offset = offset
			continue
		}
		out.Overlays = append(out.Overlays, Overlay{AtlasRect: rect, Offset: offset})
	}

	for _, cue := range frame.Sounds {
		if sm.Has(cue.ID) {
			out.SoundCues = append(out.SoundCues, cue.ID)
		}
	}
	if frame.ExitBranch != nil {
		target := *frame.ExitBranch
		out.ExitBranch = &target
	}
	if len(frame.Branches) > 0 {
		branching := &Branching{Branches: make([]BranchTarget, 0, len(frame.Branches))}
		for _, br := range frame.Branches {
			branching.Branches = append(branching.Branches, BranchTarget{FrameIndex: br.FrameIndex, Weight: br.Probability})
		}
		out.Branching = branching
	}
	return out, nil
}

func layerOffset(layer animation.Layer) *Offset {
	if layer.OffsetX == 0 && layer.OffsetY == 0 {
		return nil
	}
	return &Offset{X: layer.OffsetX, Y: layer.OffsetY}
}

// frameSize prefers the character's nominal size and falls back to the
// largest packed image.
func frameSize(model *animation.Model, layout atlas.Layout) [2]int {
	if model.Character.Width > 0 && model.Character.Height > 0 {
		return [2]int{model.Character.Width, model.Character.Height}
	}
	var size [2]int
	for _, r := range layout.Rects {
		size[0] = max(size[0], r.W)
		size[1] = max(size[1], r.H)
	}
	return size
}
