package application

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unauthorized", err: ErrUnauthorized, want: "unauthorized"},
		{name: "wrapped not found", err: fmt.Errorf("update: %w", ErrNotFound), want: "not_found"},
		{name: "event closed", err: ErrEventClosed, want: "event_closed"},
		{name: "bad hash", err: ErrInvalidPasswordHash, want: "invalid_password_hash"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"title": "x"}}, want: "validation"},
		{name: "other", err: errors.New("boom"), want: "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
