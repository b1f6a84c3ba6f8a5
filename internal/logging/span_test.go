package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestStartSpanReusesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-1")

	ctx, span := StartSpan(ctx, "compose")
	if TraceIDFromContext(ctx) != "req-1" {
		t.Fatalf("expected trace id to reuse request id got %q", TraceIDFromContext(ctx))
	}
	if SpanIDFromContext(ctx) == "" {
		t.Fatal("expected span id to be set")
	}

	span.End(errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["span_name"] != "compose" || entry["trace_id"] != "req-1" || entry["error"] != "boom" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
}

func TestNewParsesLevel(t *testing.T) {
	logger := New("debug")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be enabled")
	}
	logger = New("bogus")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected unknown level to fall back to info")
	}
}
