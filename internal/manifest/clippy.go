package manifest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"agentpack/internal/sounds"
)

type clippyFrame struct {
	Duration   int              `json:"duration"`
	Images     [][2]int         `json:"images,omitempty"`
	Sound      string           `json:"sound,omitempty"`
	ExitBranch *int             `json:"exitBranch,omitempty"`
	Branching  *clippyBranching `json:"branching,omitempty"`
}

type clippyBranching struct {
	Branches []BranchTarget `json:"branches"`
}

type clippyAnimation struct {
	Frames []clippyFrame `json:"frames"`
}

type clippyAgent struct {
	OverlayCount int                        `json:"overlayCount"`
	Sounds       []string                   `json:"sounds"`
	Framesize    [2]int                     `json:"framesize"`
	Animations   map[string]clippyAnimation `json:"animations"`
}

// ClippyAgentFile is the clippy.js agent script name.
const ClippyAgentFile = "agent.js"

// ClippySoundsFile returns the sounds script name for a format.
func ClippySoundsFile(format string) string {
	return "sounds-" + format + ".js"
}

// WriteClippyJS renders doc as a clippy.ready call.
func WriteClippyJS(w io.Writer, doc *Document) error {
	agent := clippyAgent{
		OverlayCount: 1,
		Sounds:       []string{},
		Framesize:    doc.FrameSize,
		Animations:   make(map[string]clippyAnimation, len(doc.Animations)),
	}

	seen := map[string]struct{}{}
	for name, anim := range doc.Animations {
		frames := make([]clippyFrame, 0, len(anim.Frames))
		for _, frame := range anim.Frames {
			cf := clippyFrame{Duration: frame.DurationMs, ExitBranch: frame.ExitBranch}
			if frame.AtlasRect != nil {
				cf.Images = append(cf.Images, [2]int{frame.AtlasRect.X, frame.AtlasRect.Y})
			}
			for _, overlay := range frame.Overlays {
				cf.Images = append(cf.Images, [2]int{overlay.AtlasRect.X, overlay.AtlasRect.Y})
			}
			agent.OverlayCount = max(agent.OverlayCount, len(cf.Images))
			if len(frame.SoundCues) > 0 {
				cf.Sound = frame.SoundCues[0]
				for _, cue := range frame.SoundCues {
					if _, ok := seen[cue]; !ok {
						seen[cue] = struct{}{}
						agent.Sounds = append(agent.Sounds, cue)
					}
				}
			}
			if frame.Branching != nil {
				cf.Branching = &clippyBranching{Branches: frame.Branching.Branches}
			}
			frames = append(frames, cf)
		}
		agent.Animations[name] = clippyAnimation{Frames: frames}
	}
	sort.Strings(agent.Sounds)

	return writeCall(w, "clippy.ready", doc.Agent, agent)
}

// WriteClippySounds renders every artifact of sm as a base64 data URL inside a
// clippy.soundsReady call. Artifact paths are resolved against root.
func WriteClippySounds(w io.Writer, agent, root string, sm sounds.Manifest) error {
	mime := soundMIME(sm.Format)
	encoded := map[string]string{}
	cache := map[string]string{}
	for _, cue := range sm.Keys() {
		entry := sm.Cues[cue]
		if url, ok := cache[entry.Artifact]; ok {
			encoded[cue] = url
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(entry.Artifact)))
		if err != nil {
			return fmt.Errorf("read sound artifact %s: %w", entry.Artifact, err)
		}
		url := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
		cache[entry.Artifact] = url
		encoded[cue] = url
	}
	return writeCall(w, "clippy.soundsReady", agent, encoded)
}

func writeCall(w io.Writer, fn, agent string, payload any) error {
	name, err := json.Marshal(agent)
	if err != nil {
		return fmt.Errorf("encode agent name: %w", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", fn, err)
	}
	if _, err := fmt.Fprintf(w, "%s(%s, %s);\n", fn, name, body); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func soundMIME(format string) string {
	switch format {
	case "mp3":
		return "audio/mpeg"
	case "ogg", "opus":
		return "audio/ogg"
	case "m4a":
		return "audio/mp4"
	case "wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
