package staging

import (
	"os"
	"path/filepath"
	"testing"

	"agentpack/internal/logging"
)

func TestCommitMovesFilesAndSounds(t *testing.T) {
	outDir := t.TempDir()
	dir := New(outDir, "run-1")
	if err := dir.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := os.WriteFile(dir.Path("animations.json"), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir.Path("sounds"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir.Path("sounds/0001.mp3"), []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(outDir, "sounds"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "sounds", "stale.mp3"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := dir.Commit([]string{"animations.json"}, "sounds", true); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	dir.Discard(logging.NewNop())

	if _, err := os.Stat(filepath.Join(outDir, "animations.json")); err != nil {
		t.Fatalf("expected committed manifest: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "sounds", "0001.mp3")); err != nil {
		t.Fatalf("expected committed sound: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "sounds", "stale.mp3")); !os.IsNotExist(err) {
		t.Fatalf("stale sound should be replaced, stat err = %v", err)
	}
	if _, err := os.Stat(dir.Root()); !os.IsNotExist(err) {
		t.Fatalf("staging directory should be gone, stat err = %v", err)
	}
}

func TestCommitWithoutSoundsRemovesPrevious(t *testing.T) {
	outDir := t.TempDir()
	dir := New(outDir, "run-2")
	if err := dir.Create(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(outDir, "sounds"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := dir.Commit(nil, "sounds", false); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "sounds")); !os.IsNotExist(err) {
		t.Fatalf("previous sound directory should be removed, stat err = %v", err)
	}
}

func TestCommitFailureRestoresPreviousOutputs(t *testing.T) {
	outDir := t.TempDir()
	for name, data := range map[string]string{
		"atlas.png":       "old atlas",
		"animations.json": "old manifest",
		"sounds/old.mp3":  "old sound",
	} {
		path := filepath.Join(outDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dir := New(outDir, "run-3")
	if err := dir.Create(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir.Path("sounds"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir.Path("sounds/new.mp3"), []byte("new sound"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir.Path("atlas.png"), []byte("new atlas"), 0o644); err != nil {
		t.Fatal(err)
	}

	// animations.json was never staged, so its move fails after the atlas and
	// sounds are already in place.
	err := dir.Commit([]string{"atlas.png", "animations.json"}, "sounds", true)
	if err == nil {
		t.Fatal("expected commit error")
	}
	dir.Discard(logging.NewNop())

	want := map[string]string{
		"atlas.png":       "old atlas",
		"animations.json": "old manifest",
		"sounds/old.mp3":  "old sound",
	}
	for name, data := range want {
		got, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != data {
			t.Fatalf("%s = %q, want %q", name, got, data)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "sounds", "new.mp3")); !os.IsNotExist(err) {
		t.Fatalf("new sound should be rolled back, stat err = %v", err)
	}
}
