package atlas_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"agentpack/internal/acd"
	"agentpack/internal/animation"
	"agentpack/internal/atlas"
	"agentpack/internal/resources"
	"agentpack/internal/services"
	"agentpack/internal/testsupport"
)

func TestShelfPackerOrdersByHeight(t *testing.T) {
	packer := atlas.ShelfPacker{MaxWidth: 30, WidthMode: atlas.WidthFit}
	layout, err := packer.Pack([]atlas.Item{
		{ID: "small", Width: 5, Height: 5},
		{ID: "tall", Width: 10, Height: 20},
		{ID: "wide", Width: 20, Height: 10},
		{ID: "tie", Width: 5, Height: 5},
	})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	want := map[string]atlas.Rect{
		"tall":  {X: 0, Y: 0, W: 10, H: 20},
		"wide":  {X: 10, Y: 0, W: 20, H: 10},
		"small": {X: 0, Y: 20, W: 5, H: 5},
		"tie":   {X: 5, Y: 20, W: 5, H: 5},
	}
	for id, rect := range want {
		if got := layout.Rects[id]; got != rect {
			t.Fatalf("rect %s = %+v, want %+v", id, got, rect)
		}
	}
	if layout.Width != 30 || layout.Height != 25 {
		t.Fatalf("layout size = %dx%d, want 30x25", layout.Width, layout.Height)
	}
	if err := atlas.Verify(layout); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestShelfPackerWidthModes(t *testing.T) {
	items := []atlas.Item{{ID: "a", Width: 4, Height: 4}, {ID: "b", Width: 4, Height: 4}}

	fixed, err := atlas.ShelfPacker{MaxWidth: 64, WidthMode: atlas.WidthFixed}.Pack(items)
	if err != nil {
		t.Fatalf("Pack fixed: %v", err)
	}
	if fixed.Width != 64 || fixed.Height != 4 {
		t.Fatalf("fixed layout = %dx%d", fixed.Width, fixed.Height)
	}

	fit, err := atlas.ShelfPacker{MaxWidth: 64, WidthMode: atlas.WidthFit, Padding: 2}.Pack(items)
	if err != nil {
		t.Fatalf("Pack fit: %v", err)
	}
	if fit.Width != 10 || fit.Rects["b"].X != 6 {
		t.Fatalf("fit layout = %+v", fit)
	}
}

func TestPackersRejectOversizedImages(t *testing.T) {
	items := []atlas.Item{{ID: "huge", Width: 300, Height: 4}}
	packers := map[string]atlas.Packer{
		"shelf": atlas.ShelfPacker{MaxWidth: 256},
		"grid":  atlas.GridPacker{MaxWidth: 256},
	}
	for name, packer := range packers {
		if _, err := packer.Pack(items); !errors.Is(err, services.ErrAtlasOverflow) {
			t.Fatalf("%s: expected atlas overflow, got %v", name, err)
		}
	}
}

func TestPackersRejectEmptyImages(t *testing.T) {
	tests := []struct {
		name   string
		packer atlas.Packer
		items  []atlas.Item
	}{
		{"grid all zero width", atlas.GridPacker{MaxWidth: 64}, []atlas.Item{{ID: "a", Width: 0, Height: 4}, {ID: "b", Width: 0, Height: 2}}},
		{"grid zero height", atlas.GridPacker{MaxWidth: 64}, []atlas.Item{{ID: "a", Width: 4, Height: 0}}},
		{"shelf zero width", atlas.ShelfPacker{MaxWidth: 64}, []atlas.Item{{ID: "a", Width: 4, Height: 4}, {ID: "b", Width: 0, Height: 4}}},
	}
	for _, tt := range tests {
		_, err := tt.packer.Pack(tt.items)
		if !errors.Is(err, services.ErrMissingImageResource) {
			t.Fatalf("%s: expected missing image resource, got %v", tt.name, err)
		}
		if kind := services.Kind(err); kind != "missing_image_resource" {
			t.Fatalf("%s: unexpected error kind %q", tt.name, kind)
		}
	}
}

func TestVerifyRejectsEmptyRect(t *testing.T) {
	layout := atlas.Layout{Width: 10, Height: 10, Rects: map[string]atlas.Rect{
		"a": {X: 0, Y: 0, W: 0, H: 5},
	}}
	if err := atlas.Verify(layout); !errors.Is(err, services.ErrMissingImageResource) {
		t.Fatalf("expected missing image resource, got %v", err)
	}
}

func TestPackersNeverOverlap(t *testing.T) {
	var items []atlas.Item
	for i := 0; i < 40; i++ {
		items = append(items, atlas.Item{ID: fmt.Sprintf("img-%02d", i), Width: 3 + (i*7)%23, Height: 2 + (i*5)%17})
	}
	packers := map[string]atlas.Packer{
		"shelf":       atlas.ShelfPacker{MaxWidth: 64},
		"shelf-fit":   atlas.ShelfPacker{MaxWidth: 64, WidthMode: atlas.WidthFit, Padding: 1},
		"grid":        atlas.GridPacker{MaxWidth: 64},
		"grid-narrow": atlas.GridPacker{MaxWidth: 25},
	}
	for name, packer := range packers {
		layout, err := packer.Pack(items)
		if err != nil {
			t.Fatalf("%s: Pack: %v", name, err)
		}
		if len(layout.Rects) != len(items) {
			t.Fatalf("%s: expected %d rects, got %d", name, len(items), len(layout.Rects))
		}
		if layout.Width > 64 {
			t.Fatalf("%s: width %d exceeds max", name, layout.Width)
		}
		if err := atlas.Verify(layout); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestVerifyDetectsOverlap(t *testing.T) {
	layout := atlas.Layout{Width: 10, Height: 10, Rects: map[string]atlas.Rect{
		"a": {X: 0, Y: 0, W: 5, H: 5},
		"b": {X: 4, Y: 4, W: 5, H: 5},
	}}
	if err := atlas.Verify(layout); err == nil {
		t.Fatal("expected overlap error")
	}
	layout.Rects = map[string]atlas.Rect{"c": {X: 8, Y: 0, W: 5, H: 5}}
	if err := atlas.Verify(layout); err == nil {
		t.Fatal("expected bounds error")
	}
}

func idleWaveModel(t *testing.T) (*animation.Model, *resources.MemoryLocator) {
	t.Helper()
	loc := resources.NewMemoryLocator()
	loc.AddImage("Images/0001.bmp", testsupport.SolidImage(16, 12, color.NRGBA{R: 255, A: 255}))
	loc.AddImage("Images/0002.bmp", testsupport.SolidImage(10, 8, color.NRGBA{B: 255, A: 255}))
	loc.AddAudio("Audio/0001.wav", resources.AudioInfo{})
	records, err := acd.Parse(testsupport.IdleWaveScript)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	model, err := animation.Build(records, loc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return model, loc
}

func TestBuildDeduplicatesAndComposes(t *testing.T) {
	model, loc := idleWaveModel(t)

	result, err := atlas.Build(context.Background(), model, loc, atlas.Options{
		Packer:  atlas.ShelfPacker{MaxWidth: 64, WidthMode: atlas.WidthFit},
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Assets) != 2 || len(result.Layout.Rects) != 2 {
		t.Fatalf("expected 2 distinct images, got %d assets", len(result.Assets))
	}
	if loc.DecodeCount("Images/0001.bmp") != 1 {
		t.Fatalf("shared image decoded %d times", loc.DecodeCount("Images/0001.bmp"))
	}

	rect := result.Layout.Rects["Images/0002.bmp"]
	if rect.W != 10 || rect.H != 8 {
		t.Fatalf("rect dims %+v do not match source 10x8", rect)
	}
	if got := result.Image.NRGBAAt(rect.X+1, rect.Y+1); got.B != 255 || got.R != 0 {
		t.Fatalf("unexpected pixel %+v in blue frame", got)
	}
	first := result.Layout.Rects["Images/0001.bmp"]
	if got := result.Image.NRGBAAt(first.X, first.Y); got.R != 255 {
		t.Fatalf("unexpected pixel %+v in red frame", got)
	}
}

func TestBuildSharesRectWithinAnimation(t *testing.T) {
	loc := resources.NewMemoryLocator()
	loc.AddImage("Images/idle.bmp", testsupport.SolidImage(16, 12, color.NRGBA{R: 255, A: 255}))
	loc.AddImage("Images/blink.bmp", testsupport.SolidImage(16, 12, color.NRGBA{G: 255, A: 255}))
	loc.AddImage("Images/wave0.bmp", testsupport.SolidImage(12, 10, color.NRGBA{B: 255, A: 255}))
	loc.AddImage("Images/wave1.bmp", testsupport.SolidImage(10, 8, color.NRGBA{R: 255, B: 255, A: 255}))
	records, err := acd.Parse(testsupport.IdleReuseScript)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	model, err := animation.Build(records, loc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	result, err := atlas.Build(context.Background(), model, loc, atlas.Options{
		Packer: atlas.ShelfPacker{MaxWidth: 64, WidthMode: atlas.WidthFit},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Layout.Rects) != 3 {
		t.Fatalf("expected idle, wave0 and wave1 only, got %v", result.Layout.Rects)
	}
	if loc.DecodeCount("Images/blink.bmp") != 0 {
		t.Fatal("unreferenced image should not be decoded")
	}
	if loc.DecodeCount("Images/idle.bmp") != 1 {
		t.Fatalf("idle.bmp decoded %d times", loc.DecodeCount("Images/idle.bmp"))
	}

	idle, ok := model.Lookup("Idle")
	if !ok || len(idle.Frames) != 3 {
		t.Fatalf("unexpected Idle animation %+v", idle)
	}
	first := result.Layout.Rects[idle.Frames[0].Images[0].ID]
	last := result.Layout.Rects[idle.Frames[2].Images[0].ID]
	if first != last || first.W != 16 || first.H != 12 {
		t.Fatalf("frames 0 and 2 should share one rect: %+v vs %+v", first, last)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	model, loc := idleWaveModel(t)
	encode := func() []byte {
		result, err := atlas.Build(context.Background(), model, loc, atlas.Options{Packer: atlas.ShelfPacker{MaxWidth: 64}, Workers: 4})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		var buf bytes.Buffer
		if err := atlas.EncodePNG(&buf, result); err != nil {
			t.Fatalf("EncodePNG: %v", err)
		}
		return buf.Bytes()
	}
	first, second := encode(), encode()
	if !bytes.Equal(first, second) {
		t.Fatal("expected byte-identical atlas output")
	}
	img, err := png.Decode(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 12) {
		t.Fatalf("unexpected atlas bounds %v", img.Bounds())
	}
}

func TestBuildPropagatesOverflow(t *testing.T) {
	model, loc := idleWaveModel(t)
	_, err := atlas.Build(context.Background(), model, loc, atlas.Options{Packer: atlas.ShelfPacker{MaxWidth: 12}})
	if !errors.Is(err, services.ErrAtlasOverflow) {
		t.Fatalf("expected atlas overflow, got %v", err)
	}
}

func TestNewPacker(t *testing.T) {
	if p, err := atlas.NewPacker("grid", 128, "", 0); err != nil || p.(atlas.GridPacker).MaxWidth != 128 {
		t.Fatalf("NewPacker grid = %#v, %v", p, err)
	}
	if _, err := atlas.NewPacker("maxrects", 128, "", 0); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
