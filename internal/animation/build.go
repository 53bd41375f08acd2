package animation

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"agentpack/internal/acd"
	"agentpack/internal/resources"
	"agentpack/internal/services"
)

// defaultFrameUnits applies when neither the frame nor the character declares a
// duration.
const defaultFrameUnits = 10

// durationUnitMs converts description duration units (1/100 s) to milliseconds.
const durationUnitMs = 10

type builder struct {
	locator resources.Locator
	model   *Model

	current     *Animation
	currentLine int
	stateLines  []int
	returnLines []int

	// cueKeys maps a lower-cased waveform source to its cue key; keyUses
	// counts lower-cased keys so distinct sources never share one.
	cueKeys map[string]string
	keyUses map[string]int
}

// Build validates records against locator and assembles the model.
func Build(records []acd.Record, locator resources.Locator) (*Model, error) {
	if locator == nil {
		return nil, errors.New("animation build: locator is required")
	}
	b := &builder{
		locator: locator,
		model:   &Model{byName: map[string]int{}},
		cueKeys: map[string]string{},
		keyUses: map[string]int{},
	}

	// The character block may follow animations; read it first so default
	// durations apply everywhere.
	for _, rec := range records {
		if ch, ok := rec.(acd.CharacterRecord); ok {
			b.model.Character = Character{
				Name:            ch.Name,
				Width:           ch.Width,
				Height:          ch.Height,
				DefaultDuration: ch.DefaultDuration * durationUnitMs,
			}
		}
	}
	if b.model.Character.DefaultDuration <= 0 {
		b.model.Character.DefaultDuration = defaultFrameUnits * durationUnitMs
	}

	for _, rec := range records {
		var err error
		switch r := rec.(type) {
		case acd.CharacterRecord:
		case acd.AnimationRecord:
			err = b.openAnimation(r)
		case acd.AnimationEndRecord:
			err = b.closeAnimation(r)
		case acd.FrameRecord:
			err = b.addFrame(r)
		case acd.BranchRecord:
			err = b.addBranch(r)
		case acd.StateRecord:
			b.model.States = append(b.model.States, State{Name: r.Name, Animations: append([]string(nil), r.Animations...)})
			b.stateLines = append(b.stateLines, r.Line)
		default:
			err = fmt.Errorf("%w: unexpected record %T", services.ErrMalformedDescription, rec)
		}
		if err != nil {
			return nil, err
		}
	}
	if b.current != nil {
		return nil, malformed(b.currentLine, "animation %q is never closed", b.current.Name)
	}

	if err := b.validate(); err != nil {
		return nil, err
	}
	return b.model, nil
}

func (b *builder) openAnimation(r acd.AnimationRecord) error {
	if b.current != nil {
		return malformed(r.Line, "animation %q starts inside animation %q", r.Name, b.current.Name)
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return malformed(r.Line, "animation without a name")
	}
	key := strings.ToLower(name)
	if existing, ok := b.model.byName[key]; ok {
		return fmt.Errorf("%w: line %d: animation %q already defined as %q",
			services.ErrDuplicateAnimationName, r.Line, name, b.model.Animations[existing].Name)
	}
	if r.TransitionType < TransitionReturn || r.TransitionType > TransitionNone {
		return malformed(r.Line, "animation %q: transition type %d out of range", name, r.TransitionType)
	}
	b.model.byName[key] = len(b.model.Animations)
	b.model.Animations = append(b.model.Animations, Animation{
		Name:            name,
		TransitionType:  r.TransitionType,
		ReturnAnimation: strings.TrimSpace(r.ReturnAnimation),
		Frames:          []Frame{},
	})
	b.returnLines = append(b.returnLines, r.Line)
	b.current = &b.model.Animations[len(b.model.Animations)-1]
	b.currentLine = r.Line
	return nil
}

func (b *builder) closeAnimation(r acd.AnimationEndRecord) error {
	if b.current == nil {
		return malformed(r.Line, "animation end without an open animation")
	}
	b.current = nil
	return nil
}

func (b *builder) addFrame(r acd.FrameRecord) error {
	if b.current == nil {
		return malformed(r.Line, "frame outside of an animation")
	}
	anim := b.current
	index := len(anim.Frames)

	frame := Frame{Index: index, DurationMs: b.model.Character.DefaultDuration}
	if r.Duration != nil {
		if *r.Duration < 0 {
			return malformed(r.Line, "animation %q frame %d: negative duration %d", anim.Name, index, *r.Duration)
		}
		frame.DurationMs = *r.Duration * durationUnitMs
	}
	if r.ExitBranch < 0 {
		return malformed(r.Line, "animation %q frame %d: negative exit branch %d", anim.Name, index, r.ExitBranch)
	}
	if r.ExitBranch > 0 {
		target := r.ExitBranch - 1
		frame.ExitBranch = &target
	}

	for _, img := range r.Images {
		id, err := b.locator.ResolveImage(img.Filename)
		if err != nil {
			return fmt.Errorf("%w: line %d: animation %q frame %d: %w", services.ErrMalformedDescription, img.Line, anim.Name, index, err)
		}
		frame.Images = append(frame.Images, Layer{ID: id, OffsetX: img.OffsetX, OffsetY: img.OffsetY})
	}
	for _, sound := range r.Sounds {
		source, err := b.locator.ResolveAudio(sound)
		if err != nil {
			return fmt.Errorf("%w: line %d: animation %q frame %d: %w", services.ErrMalformedDescription, r.Line, anim.Name, index, err)
		}
		frame.Sounds = append(frame.Sounds, Cue{ID: b.cueKey(sound, source), Source: source})
	}

	anim.Frames = append(anim.Frames, frame)
	return nil
}

// cueKey returns the manifest key for source. The first source seen with a
// basename keeps it; later sources sharing that basename get a numeric suffix.
func (b *builder) cueKey(ref, source string) string {
	sourceKey := strings.ToLower(source)
	if key, ok := b.cueKeys[sourceKey]; ok {
		return key
	}
	key := resources.BaseName(ref)
	if n := b.keyUses[strings.ToLower(key)]; n > 0 {
		ext := path.Ext(key)
		stem := strings.TrimSuffix(key, ext)
		for {
			n++
			candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
			if b.keyUses[strings.ToLower(candidate)] == 0 {
				key = candidate
				break
			}
		}
	}
	b.keyUses[strings.ToLower(key)]++
	b.cueKeys[sourceKey] = key
	return key
}

func (b *builder) addBranch(r acd.BranchRecord) error {
	if b.current == nil {
		return malformed(r.Line, "branch outside of an animation")
	}
	if len(b.current.Frames) == 0 {
		return malformed(r.Line, "animation %q: branch before any frame", b.current.Name)
	}
	frame := &b.current.Frames[len(b.current.Frames)-1]
	if r.Probability < 0 {
		return malformed(r.Line, "animation %q frame %d: negative probability %d", b.current.Name, frame.Index, r.Probability)
	}
	frame.Branches = append(frame.Branches, Branch{FrameIndex: r.Target - 1, Probability: r.Probability})
	return nil
}

// validate checks references that can only be resolved once every animation is
// known.
func (b *builder) validate() error {
	for i := range b.model.Animations {
		anim := &b.model.Animations[i]
		count := len(anim.Frames)
		for _, frame := range anim.Frames {
			if frame.ExitBranch != nil && *frame.ExitBranch >= count {
				return fmt.Errorf("%w: animation %q frame %d: exit branch %d outside %d frames",
					services.ErrMalformedDescription, anim.Name, frame.Index, *frame.ExitBranch+1, count)
			}
			total := 0
			for _, br := range frame.Branches {
				if br.FrameIndex < 0 || br.FrameIndex >= count {
					return fmt.Errorf("%w: animation %q frame %d: branch target %d outside %d frames",
						services.ErrMalformedDescription, anim.Name, frame.Index, br.FrameIndex+1, count)
				}
				total += br.Probability
			}
			if total > 100 {
				return fmt.Errorf("%w: animation %q frame %d: branch probabilities sum to %d",
					services.ErrMalformedDescription, anim.Name, frame.Index, total)
			}
		}
		anim.Looping = loops(*anim)

		if anim.ReturnAnimation != "" {
			target, ok := b.model.byName[strings.ToLower(anim.ReturnAnimation)]
			if !ok {
				return malformed(b.returnLines[i], "animation %q returns to unknown animation %q", anim.Name, anim.ReturnAnimation)
			}
			anim.ReturnAnimation = b.model.Animations[target].Name
		}
	}

	for i, state := range b.model.States {
		for j, member := range state.Animations {
			idx, ok := b.model.byName[strings.ToLower(member)]
			if !ok {
				return malformed(b.stateLines[i], "state %q names unknown animation %q", state.Name, member)
			}
			b.model.States[i].Animations[j] = b.model.Animations[idx].Name
		}
	}
	return nil
}

func loops(anim Animation) bool {
	if len(anim.Frames) == 0 {
		return false
	}
	last := anim.Frames[len(anim.Frames)-1]
	for _, br := range last.Branches {
		if br.FrameIndex <= last.Index && br.Probability > 0 {
			return true
		}
	}
	return false
}

func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", services.ErrMalformedDescription, line, fmt.Sprintf(format, args...))
}
