package application

import "testing"

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"title": "invalid"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	var nilErr *ValidationError
	if nilErr.HasErrors() {
		t.Fatalf("expected HasErrors to report false for nil error")
	}
	if !(&ValidationError{FieldErrors: map[string]string{"title": "bad"}}).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_Add(t *testing.T) {
	t.Parallel()

	v := &ValidationError{}
	v.add("title", "first")
	v.add("title", "second")
	if got := v.FieldErrors["title"]; got != "first" {
		t.Fatalf("expected first message to be kept, got %q", got)
	}
}
