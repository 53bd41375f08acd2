package testsupport

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

// Bundle writes a decompiled agent bundle into a temp directory.
type Bundle struct {
	t     testing.TB
	Root  string
	Agent string
}

// NewBundle creates an empty bundle directory for agent.
func NewBundle(t testing.TB, agent string) *Bundle {
	t.Helper()
	root := filepath.Join(t.TempDir(), agent+" ACS Decompiled")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir bundle: %v", err)
	}
	return &Bundle{t: t, Root: root, Agent: agent}
}

// Image writes Images/<name> as a solid bitmap.
func (b *Bundle) Image(name string, w, h int, c color.Color) *Bundle {
	b.t.Helper()
	WriteBMP(b.t, filepath.Join(b.Root, "Images", name), w, h, c)
	return b
}

// Sound writes Audio/<name> as a short waveform.
func (b *Bundle) Sound(name string, durationMs int) *Bundle {
	b.t.Helper()
	WriteWAV(b.t, filepath.Join(b.Root, "Audio", name), 8000, durationMs)
	return b
}

// Description writes <agent>.acd with the provided script text.
func (b *Bundle) Description(script string) *Bundle {
	b.t.Helper()
	path := filepath.Join(b.Root, b.Agent+".acd")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		b.t.Fatalf("write description: %v", err)
	}
	return b
}

// IdleWaveScript describes two animations sharing one image: Idle holds
// 0001.bmp for 100ms, Wave plays 0001.bmp then 0002.bmp with a cue on the
// second frame.
const IdleWaveScript = `// agent description
DefineCharacter
    Width = 16
    Height = 12
    DefaultFrameDuration = 10
EndCharacter

DefineAnimation "Idle"
    TransitionType = 2
    DefineFrame
        Duration = 10
        DefineImage
            Filename = "Images\0001.bmp"
        EndImage
    EndFrame
EndAnimation

DefineAnimation "Wave"
    TransitionType = 0
    ReturnAnimation = "Idle"
    DefineFrame
        Duration = 5
        DefineImage
            Filename = "Images\0001.bmp"
        EndImage
    EndFrame
    DefineFrame
        Duration = 5
        SoundEffect = "Audio\0001.wav"
        DefineImage
            Filename = "Images\0002.bmp"
        EndImage
    EndFrame
EndAnimation

DefineState "Idling"
    Animation = "Idle"
EndState
`

// IdleWaveBundle writes the two-animation fixture described by IdleWaveScript.
func IdleWaveBundle(t testing.TB) *Bundle {
	t.Helper()
	return NewBundle(t, "Merlin").
		Image("0001.bmp", 16, 12, color.NRGBA{R: 200, A: 255}).
		Image("0002.bmp", 10, 8, color.NRGBA{G: 200, A: 255}).
		Sound("0001.wav", 250).
		Description(IdleWaveScript)
}

// IdleReuseScript describes Idle as three frames where the first and last show
// idle.bmp around an image-less pause, and Wave as two frames with their own
// images.
const IdleReuseScript = `DefineAnimation "Idle"
    TransitionType = 2
    DefineFrame
        DefineImage
            Filename = "Images\idle.bmp"
        EndImage
    EndFrame
    DefineFrame
        Duration = 20
    EndFrame
    DefineFrame
        DefineImage
            Filename = "Images\idle.bmp"
        EndImage
    EndFrame
EndAnimation

DefineAnimation "Wave"
    TransitionType = 0
    ReturnAnimation = "Idle"
    DefineFrame
        DefineImage
            Filename = "Images\wave0.bmp"
        EndImage
    EndFrame
    DefineFrame
        DefineImage
            Filename = "Images\wave1.bmp"
        EndImage
    EndFrame
EndAnimation
`

// IdleReuseBundle writes the fixture described by IdleReuseScript.
func IdleReuseBundle(t testing.TB) *Bundle {
	t.Helper()
	return NewBundle(t, "Genie").
		Image("idle.bmp", 16, 12, color.NRGBA{R: 200, A: 255}).
		Image("wave0.bmp", 12, 10, color.NRGBA{G: 200, A: 255}).
		Image("wave1.bmp", 10, 8, color.NRGBA{B: 200, A: 255}).
		Description(IdleReuseScript)
}
