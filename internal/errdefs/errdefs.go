// Package errdefs holds the error taxonomy shared across packages. Callers
// classify with errors.Is; producers wrap with fmt.Errorf("...: %w", ...).
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed arguments rejected before any I/O.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotConfigured marks a missing credential or an unconnected dependency.
	ErrNotConfigured = errors.New("not configured")
	// ErrUpstream marks a failing or unparsable response from an external API.
	ErrUpstream = errors.New("upstream failure")
	// ErrNotFound marks a valid search that produced nothing.
	ErrNotFound = errors.New("not found")
)

// InvalidInput formats a message wrapped with ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotConfigured formats a message wrapped with ErrNotConfigured.
func NotConfigured(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotConfigured, fmt.Sprintf(format, args...))
}

// NotFound formats a message wrapped with ErrNotFound.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Upstream wraps cause with ErrUpstream and the failing operation. If cause
// already carries a classification it is kept as is.
func Upstream(operation string, cause error) error {
	if cause == nil {
		return nil
	}
	if Classified(cause) {
		return fmt.Errorf("%s: %w", operation, cause)
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrUpstream, cause)
}

// Classified reports whether err already carries one of the taxonomy sentinels.
func Classified(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrUpstream) ||
		errors.Is(err, ErrNotFound)
}

// Kind names the taxonomy bucket of err for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}
