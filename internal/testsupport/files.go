package testsupport

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/image/bmp"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	mkdirFor(t, path)
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// WriteBMP encodes a solid w×h bitmap at path.
func WriteBMP(t testing.TB, path string, w, h int, c color.Color) {
	t.Helper()

	mkdirFor(t, path)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := bmp.Encode(f, SolidImage(w, h, c)); err != nil {
		t.Fatalf("encode bmp %s: %v", path, err)
	}
}

// WriteWAV writes a mono 16-bit PCM waveform of the requested length.
func WriteWAV(t testing.TB, path string, sampleRate, durationMs int) {
	t.Helper()

	mkdirFor(t, path)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	samples := sampleRate * durationMs / 1000
	data := make([]int, samples)
	for i := range data {
		if (i/20)%2 == 0 {
			data[i] = 4000
		} else {
			data[i] = -4000
		}
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode wav %s: %v", path, err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close wav %s: %v", path, err)
	}
}

func mkdirFor(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
}
