package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestStartSpanPropagatesTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	ctx, parent := StartSpan(ctx, "parent")
	traceID := TraceIDFromContext(ctx)
	parentID := SpanIDFromContext(ctx)
	if traceID == "" || parentID == "" {
		t.Fatal("expected trace and span ids on the context")
	}

	childCtx, child := StartSpan(ctx, "child")
	if TraceIDFromContext(childCtx) != traceID {
		t.Fatal("expected child span to keep the trace id")
	}
	if SpanIDFromContext(childCtx) == parentID {
		t.Fatal("expected child span to get its own id")
	}

	child.RecordError(errors.New("boom"))
	child.End()
	parent.End()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "span failed" || entry["parent_span_id"] != parentID || entry["error"] != "boom" {
		t.Fatalf("unexpected child entry: %v", entry)
	}
}

func TestActorIDRoundTrip(t *testing.T) {
	ctx := WithActorID(context.Background(), "user-1")
	if got := ActorIDFromContext(ctx); got != "user-1" {
		t.Fatalf("expected user-1, got %q", got)
	}
	if got := ActorIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected anonymous context to have no actor, got %q", got)
	}
}
