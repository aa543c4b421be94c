// Package failure tags stage errors with a failure reason callers can branch on.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingInput          = errors.New("missing input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrExternalTool          = errors.New("external tool error")
	ErrAuthentication        = errors.New("authentication error")
	ErrConfiguration         = errors.New("configuration error")
)

var markers = []error{
	ErrMissingInput,
	ErrDependencyUnavailable,
	ErrExternalTool,
	ErrAuthentication,
	ErrConfiguration,
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker. The marker should be one of the exported sentinels above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf returns the marker text for err, or "unknown" for untagged errors.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range markers {
		if errors.Is(err, m) {
			return m.Error()
		}
	}
	return "unknown"
}

// Fatal reports whether err must stop the process immediately.
func Fatal(err error) bool {
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
