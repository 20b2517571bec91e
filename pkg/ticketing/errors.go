package ticketing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a ticketing failure for the caller. The caller maps
// kinds to recovery actions: authentication and connection failures prompt
// for new credentials, invalid config prompts for the missing field, network
// errors offer a retry, creation failures show the remote detail.
type ErrorKind string

const (
	ErrAuthenticationFailed ErrorKind = "authentication_failed"
	ErrNetwork              ErrorKind = "network_error"
	ErrInvalidConfig        ErrorKind = "invalid_config"
	ErrCreationFailed       ErrorKind = "creation_failed"
	ErrConnectionFailed     ErrorKind = "connection_failed"
)

// Error is the error type for all ticketing operations. Message must never
// contain raw credential material; pass anything that may echo a remote
// payload through Redact first.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds an Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or the empty kind when err is not a
// ticketing Error.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// Redact replaces every occurrence of secret in msg so that error messages
// built from remote responses cannot leak an API key echoed back by the
// service.
func Redact(msg, secret string) string {
	if secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, secret, "[redacted]")
}
