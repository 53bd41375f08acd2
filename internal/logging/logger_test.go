package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agentpack/internal/config"
	"agentpack/internal/logging"
	"agentpack/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("file message")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "agentpack.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "file message") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersSubjectAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(context.Background(), "atlas")
	component := logging.NewComponentLogger(logger, "pipeline")
	logging.WithContext(ctx, component).Info("packed atlas", logging.Int("width", 256), logging.String("image", "atlas one.png"))

	line := buf.String()
	for _, fragment := range []string{"INFO pipeline/atlas: packed atlas", "width=256", `image="atlas one.png"`} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["msg"] != "json message" || payload["k"] != "v" || payload["level"] != "info" {
		t.Fatalf("unexpected json payload: %#v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected info level filtering, got %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-xyz")
	ctx = services.WithAgent(ctx, "Merlin")
	ctx = services.WithStage(ctx, "sounds")

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WithContext(ctx, logger).Info("contextual log")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	for key, want := range map[string]string{
		logging.FieldRunID: "run-xyz",
		logging.FieldAgent: "Merlin",
		logging.FieldStage: "sounds",
	} {
		if payload[key] != want {
			t.Fatalf("field %s = %v, want %q", key, payload[key], want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "test")
	logger.Error("ignored")
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("expected no-op logger to be disabled")
	}
}
