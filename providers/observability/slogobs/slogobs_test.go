package slogobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/modal-agent/mago/providers/observability"
)

func newTestObserver(buf *bytes.Buffer) *Observer {
	return New(WithOutput(buf), WithLevel(slog.LevelDebug))
}

func TestObserver_Logging(t *testing.T) {
	var buf bytes.Buffer
	obs := newTestObserver(&buf)
	ctx := context.Background()

	obs.Info(ctx, "hello", observability.String("key", "value"))

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("expected log output to contain message, got %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected log output to contain attribute, got %q", out)
	}
}

func TestObserver_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	obs := New(WithOutput(&buf), WithLevel(slog.LevelWarn))
	ctx := context.Background()

	obs.Debug(ctx, "too quiet")
	obs.Info(ctx, "still too quiet")
	obs.Error(ctx, "loud")

	out := buf.String()
	if strings.Contains(out, "too quiet") {
		t.Errorf("debug/info should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("expected error output, got %q", out)
	}
}

func TestObserver_SpanLifecycle(t *testing.T) {
	var buf bytes.Buffer
	obs := newTestObserver(&buf)

	ctx, span := obs.StartSpan(context.Background(), "test.span",
		observability.String("initial", "attr"))

	if observability.SpanFromContext(ctx) != span {
		t.Error("expected started span to be attached to context")
	}

	span.SetAttributes(observability.Int("count", 3))
	span.AddEvent("midpoint")
	span.SetStatus(observability.StatusOK, "")
	span.End()

	out := buf.String()
	for _, want := range []string{"span.start", "midpoint", "span.end", "test.span"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestObserver_RecordError(t *testing.T) {
	var buf bytes.Buffer
	obs := newTestObserver(&buf)

	_, span := obs.StartSpan(context.Background(), "failing.span")
	span.RecordError(errors.New("something broke"))
	span.End()

	if !strings.Contains(buf.String(), "something broke") {
		t.Errorf("expected recorded error in output, got %q", buf.String())
	}
}

func TestObserver_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	obs := New(WithLogger(logger))

	obs.Info(context.Background(), "json mode")

	if !strings.Contains(buf.String(), `"msg":"json mode"`) {
		t.Errorf("expected JSON output from provided logger, got %q", buf.String())
	}
}
