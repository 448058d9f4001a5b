package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerClientWritesErrorAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerClient(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.ErrorWithContextf(context.Background(), errors.New("boom"), "[Object] failed to upload %s", "camera.jpg")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record["msg"] != "[Object] failed to upload camera.jpg" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
	if record["error"] != "boom" {
		t.Fatalf("expected error attribute, got %v", record["error"])
	}
	if record["level"] != "ERROR" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var infoBuf, errorBuf bytes.Buffer
	handler := &fanoutHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := NewLoggerClient(slog.New(handler).With("service", "gallery"))

	logger.DebugWithContextf(context.Background(), "hidden")
	logger.InfoWithContextf(context.Background(), "info line")
	logger.ErrorWithContextf(context.Background(), nil, "error line")

	if strings.Contains(infoBuf.String(), "hidden") {
		t.Fatalf("debug line should be filtered: %s", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "info line") || !strings.Contains(infoBuf.String(), "error line") {
		t.Fatalf("info handler missing lines: %s", infoBuf.String())
	}
	if strings.Contains(errorBuf.String(), "info line") || !strings.Contains(errorBuf.String(), "error line") {
		t.Fatalf("error handler got wrong lines: %s", errorBuf.String())
	}
	if !strings.Contains(errorBuf.String(), "service=gallery") {
		t.Fatalf("attributes were not propagated: %s", errorBuf.String())
	}
}
