package contextutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Error("LoggerFromContext() without a logger should return slog.Default()")
	}
	if got := LoggerFromContext(nil); got != slog.Default() {
		t.Error("LoggerFromContext(nil) should return slog.Default()")
	}

	var nilLogger *slog.Logger
	if got := LoggerFromContext(WithLogger(context.Background(), nilLogger)); got != slog.Default() {
		t.Error("a nil logger in the context should fall back to slog.Default()")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")
	ctx := WithLogger(context.Background(), logger)

	LoggerFromContext(ctx).InfoContext(ctx, "hello")
	if !strings.Contains(buf.String(), "request_id=abc") {
		t.Errorf("logger from context lost its attributes: %q", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc"))

	ctx := With(base, "company_id", "acme")
	LoggerFromContext(ctx).Info("indexed")

	line := buf.String()
	if !strings.Contains(line, "request_id=abc") || !strings.Contains(line, "company_id=acme") {
		t.Errorf("With() should keep existing attributes and add new ones: %q", line)
	}

	buf.Reset()
	LoggerFromContext(base).Info("parent")
	if strings.Contains(buf.String(), "company_id") {
		t.Errorf("With() must not change the parent context's logger: %q", buf.String())
	}
}
