package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeInvalidColor, "bad color %q", "red"), `INVALID_COLOR: bad color "red"`},
		{"wrap", Wrap(ErrCodeStorage, cause, "save project %s", "p1"), "STORAGE_ERROR: save project p1: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	err := Wrap(ErrCodeStorage, cause, "save")
	if !errors.Is(err, cause) || errors.Unwrap(err) != cause {
		t.Error("Wrap should keep the cause reachable")
	}
}

func TestIs(t *testing.T) {
	storage := Wrap(ErrCodeStorage, errors.New("timeout"), "update project")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeNodeNotFound, "n1"), ErrCodeNodeNotFound, true},
		{"other code", New(ErrCodeNodeNotFound, "n1"), ErrCodeProjectNotFound, false},
		{"outer of two", Wrap(ErrCodeConflict, storage, "push"), ErrCodeConflict, true},
		{"inner of two", Wrap(ErrCodeConflict, storage, "push"), ErrCodeStorage, true},
		{"behind fmt wrap", fmt.Errorf("cli: %w", storage), ErrCodeStorage, true},
		{"plain error", errors.New("plain"), ErrCodeStorage, false},
		{"nil", nil, ErrCodeStorage, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	inner := New(ErrCodeInvalidDesign, "root is missing")
	outer := Wrap(ErrCodeInvalidInput, inner, "import design")

	if got := GetCode(outer); got != ErrCodeInvalidInput {
		t.Errorf("GetCode(outer) = %q", got)
	}
	if got := GetCode(fmt.Errorf("x: %w", inner)); got != ErrCodeInvalidDesign {
		t.Errorf("GetCode(wrapped inner) = %q", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q", got)
	}

	if got := UserMessage(outer); got != "import design" {
		t.Errorf("UserMessage(outer) = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidConstraint, http.StatusBadRequest},
		{ErrCodeProjectNotFound, http.StatusNotFound},
		{ErrCodeNodeNotFound, http.StatusNotFound},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeSessionExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeStorage, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(tt.code); got != tt.want {
				t.Errorf("HTTPStatus(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
