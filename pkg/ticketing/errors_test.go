package ticketing

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorf(t *testing.T) {
	err := Errorf(ErrInvalidConfig, "team id is required for %s", "Linear")

	if err.Kind != ErrInvalidConfig {
		t.Errorf("Expected kind %q, got %q", ErrInvalidConfig, err.Kind)
	}
	if err.Message != "team id is required for Linear" {
		t.Errorf("Unexpected message: %q", err.Message)
	}
	if err.Error() != "invalid_config: team id is required for Linear" {
		t.Errorf("Unexpected Error() output: %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"Ticketing error", Errorf(ErrNetwork, "timeout"), ErrNetwork},
		{"Wrapped ticketing error", fmt.Errorf("create: %w", Errorf(ErrCreationFailed, "rejected")), ErrCreationFailed},
		{"Plain error", errors.New("boom"), ""},
		{"Nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := KindOf(tt.err); kind != tt.expected {
				t.Errorf("Expected kind %q, got %q", tt.expected, kind)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		secret   string
		expected string
	}{
		{"Secret present", "invalid key lin_api_x supplied", "lin_api_x", "invalid key [redacted] supplied"},
		{"Secret repeated", "lin_api_x lin_api_x", "lin_api_x", "[redacted] [redacted]"},
		{"Secret absent", "not found", "lin_api_x", "not found"},
		{"Empty secret", "anything", "", "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.msg, tt.secret); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
