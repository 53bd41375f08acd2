package acd_test

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"agentpack/internal/acd"
	"agentpack/internal/services"
	"agentpack/internal/testsupport"
)

func TestParseIdleWave(t *testing.T) {
	records, err := acd.Parse(testsupport.IdleWaveScript)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var kinds []string
	for _, rec := range records {
		switch r := rec.(type) {
		case acd.CharacterRecord:
			kinds = append(kinds, "character")
			if r.Width != 16 || r.Height != 12 || r.DefaultDuration != 10 {
				t.Fatalf("unexpected character %+v", r)
			}
		case acd.AnimationRecord:
			kinds = append(kinds, "animation:"+r.Name)
		case acd.AnimationEndRecord:
			kinds = append(kinds, "end:"+r.Name)
		case acd.FrameRecord:
			kinds = append(kinds, "frame")
		case acd.BranchRecord:
			kinds = append(kinds, "branch")
		case acd.StateRecord:
			kinds = append(kinds, "state:"+r.Name)
		}
	}
	want := "character animation:Idle frame end:Idle animation:Wave frame frame end:Wave state:Idling"
	if got := strings.Join(kinds, " "); got != want {
		t.Fatalf("record stream = %q, want %q", got, want)
	}

	wave := records[4].(acd.AnimationRecord)
	if wave.ReturnAnimation != "Idle" || wave.TransitionType != 0 {
		t.Fatalf("unexpected wave header %+v", wave)
	}
	second := records[6].(acd.FrameRecord)
	if second.Duration == nil || *second.Duration != 5 {
		t.Fatalf("unexpected duration %v", second.Duration)
	}
	if len(second.Sounds) != 1 || second.Sounds[0] != `Audio\0001.wav` {
		t.Fatalf("unexpected sounds %v", second.Sounds)
	}
	if len(second.Images) != 1 || second.Images[0].Filename != `Images\0002.bmp` {
		t.Fatalf("unexpected images %+v", second.Images)
	}
}

func TestParseBranchingAndOffsets(t *testing.T) {
	script := `
defineanimation "Blink"
  DefineFrame
    ExitBranch = 2
    DefineImage
      Filename = "Images\0001.bmp"
      OffsetX = 3
      OffsetY = -2
    EndImage
    DefineImage
      Filename = "Images\0002.bmp"
    EndImage
    DefineBranching
      BranchTo = 1
      Probability = 30
      BranchTo = 2
      Probability = 70
    EndBranching
    DefineOverlay
      Filename = "Images\mouth.bmp"
    EndOverlay
  EndFrame
  DefineFrame
  EndFrame
ENDANIMATION
`
	records, err := acd.Parse(script)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d: %#v", len(records), records)
	}
	frame := records[1].(acd.FrameRecord)
	if frame.ExitBranch != 2 || frame.Duration != nil {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if len(frame.Images) != 2 || frame.Images[0].OffsetX != 3 || frame.Images[0].OffsetY != -2 {
		t.Fatalf("unexpected image layers %+v", frame.Images)
	}
	first := records[2].(acd.BranchRecord)
	second := records[3].(acd.BranchRecord)
	if first.Target != 1 || first.Probability != 30 || second.Target != 2 || second.Probability != 70 {
		t.Fatalf("unexpected branches %+v %+v", first, second)
	}
}

func TestParseSkipsUnknownBlocks(t *testing.T) {
	script := `DefineBalloon
  NumLines = 2
  Some free text the converter ignores
EndBalloon
DefineCharacter
  DefineInfo
    Name = "Genie"
  EndInfo
EndCharacter
`
	records, err := acd.Parse(script)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected only the character record, got %#v", records)
	}
	if name := records[0].(acd.CharacterRecord).Name; name != "Genie" {
		t.Fatalf("character name = %q", name)
	}
}

func TestParseErrorsCarryLineNumbers(t *testing.T) {
	tests := []struct {
		name   string
		script string
		line   string
	}{
		{name: "unterminated", script: "DefineAnimation \"A\"\n  DefineFrame\n  EndFrame\n", line: "line 1"},
		{name: "mismatched", script: "DefineAnimation \"A\"\n  DefineFrame\n  EndAnimation\n", line: "line 3"},
		{name: "stray end", script: "// x\nEndFrame\n", line: "line 2"},
		{name: "non integer", script: "DefineAnimation \"A\"\n DefineFrame\n  Duration = ten\n EndFrame\nEndAnimation\n", line: "line 3"},
		{name: "garbage", script: "DefineAnimation \"A\"\n  what is this\nEndAnimation\n", line: "line 2"},
		{name: "probability first", script: "DefineAnimation \"A\"\nDefineFrame\nDefineBranching\nProbability = 5\nEndBranching\nEndFrame\nEndAnimation\n", line: "line 4"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := acd.Parse(tc.script)
			if !errors.Is(err, services.ErrMalformedDescription) {
				t.Fatalf("expected malformed description, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.line) {
				t.Fatalf("expected %q in %q", tc.line, err.Error())
			}
		})
	}
}

func TestParseBytesDecodesLegacyCodePage(t *testing.T) {
	script := "DefineAnimation \"Café\"\nEndAnimation\n"
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(script))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	records, err := acd.ParseBytes(encoded, "windows-1252")
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if name := records[0].(acd.AnimationRecord).Name; name != "Café" {
		t.Fatalf("animation name = %q", name)
	}
}

func TestDecodeTextHonoursBOM(t *testing.T) {
	utf16 := []byte{0xFF, 0xFE, 'H', 0, 'i', 0}
	text, err := acd.DecodeText(utf16, "windows-1252")
	if err != nil || text != "Hi" {
		t.Fatalf("DecodeText utf16 = %q, %v", text, err)
	}
	text, err = acd.DecodeText([]byte("\xEF\xBB\xBFok"), "iso-8859-1")
	if err != nil || text != "ok" {
		t.Fatalf("DecodeText utf8 bom = %q, %v", text, err)
	}
	if _, err := acd.DecodeText([]byte("x"), "ebcdic"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
