package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestContextWithLogger(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatalf("expected logger from context, got %v", got)
	}

	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected nil logger for bare context, got %v", got)
	}

	if got := ContextWithLogger(context.Background(), nil); FromContext(got) != nil {
		t.Fatalf("expected nil logger to be ignored")
	}
}

func TestOr(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := Or(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger")
	}
	if got := Or(context.Background(), nil); got != slog.Default() {
		t.Fatalf("expected slog.Default when nothing is configured")
	}

	scoped := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ContextWithLogger(context.Background(), scoped)
	if got := Or(ctx, fallback); got != scoped {
		t.Fatalf("expected context logger to win over fallback")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
