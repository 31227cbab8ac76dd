package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternal marks failures of a remote API call (timeouts, HTTP
	// errors, malformed responses).
	ErrExternal = errors.New("external service error")
	// ErrValidation marks bad input caught before any remote call.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing or unusable settings.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes service context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, service, operation, message string, err error) error {
	detail := buildDetail(service, operation, message)
	if marker == nil {
		marker = ErrExternal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(service, operation, message string) string {
	parts := make([]string, 0, 3)
	if service = strings.TrimSpace(service); service != "" {
		parts = append(parts, service)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
