package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agentpack/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritableTarget(t *testing.T) {
	base := t.TempDir()
	if result := CheckWritableTarget("out", base); !result.Passed || !strings.Contains(result.Detail, "writable") {
		t.Fatalf("expected existing dir to pass, got %+v", result)
	}
	if result := CheckWritableTarget("out", filepath.Join(base, "a", "b")); !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected missing dir under writable parent to pass, got %+v", result)
	}
	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckWritableTarget("out", filepath.Join(file, "child")); result.Passed {
		t.Fatalf("expected failure beneath a file, got %+v", result)
	}
	if result := CheckWritableTarget("out", ""); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckBundle(t *testing.T) {
	bundle := testsupport.IdleWaveBundle(t)
	result := CheckBundle(bundle.Root)
	if !result.Passed {
		t.Fatalf("expected bundle to pass, got %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "Merlin.acd (2 images, 1 sounds)") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}

	empty := testsupport.NewBundle(t, "Empty")
	if result := CheckBundle(empty.Root); result.Passed {
		t.Fatal("expected bundle without description to fail")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	bundle := testsupport.IdleWaveBundle(t)

	results := RunAll(context.Background(), cfg, bundle.Root)
	if len(results) != 3 {
		t.Fatalf("expected bundle, output and state checks, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}

	cfg.History.Enabled = false
	if results := RunAll(context.Background(), cfg, ""); len(results) != 1 {
		t.Fatalf("expected only the output check, got %+v", results)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := CheckSystemDeps(context.Background(), cfg)
	if len(statuses) < 2 {
		t.Fatalf("expected ffmpeg and ffprobe statuses, got %+v", statuses)
	}
	if !statuses[0].Available || !statuses[1].Available {
		t.Fatalf("expected stubbed binaries to be available, got %+v", statuses)
	}
}
