package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProbe marks inspection failures: ffprobe exited non-zero or its
	// output could not be parsed. Files with probe errors are treated as
	// incompatible, never as compatible-by-default.
	ErrProbe = errors.New("probe error")
	// ErrExecution marks a non-zero exit from the external encode process.
	// Handled locally by the orchestrator's retry tier.
	ErrExecution = errors.New("execution error")
	// ErrVerification marks an output artifact that exists but failed
	// reclassification. Same retry path as ErrExecution.
	ErrVerification = errors.New("verification failure")
	// ErrTerminal marks the software-encode tier failing too. This is the
	// only failure class that propagates to the batch driver.
	ErrTerminal = errors.New("terminal failure")

	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExecution
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether the orchestrator may attempt the software
// fallback tier for this failure. Probe, terminal, and configuration
// failures never reach the retry edge; anything else from the external
// process does.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrProbe), errors.Is(err, ErrTerminal), errors.Is(err, ErrConfiguration):
		return false
	default:
		return true
	}
}

// ErrorDetails carries the human-readable portion of a wrapped service error.
type ErrorDetails struct {
	Message string
}

// Details returns the printable message for a stage error.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	return ErrorDetails{Message: strings.TrimSpace(err.Error())}
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
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
