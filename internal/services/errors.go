package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrIO            = errors.New("i/o error")
)

// Status is the outcome recorded for a failed job in the run summary.
type Status string

const (
	// StatusFailed marks failures that are unlikely to succeed unchanged on a
	// rerun, such as an unwritable destination.
	StatusFailed Status = "failed"
	// StatusReview marks failures caused by the input or the settings, which
	// need a person to look at the file before retrying.
	StatusReview Status = "review"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a job error to the status shown in the run summary.
func FailureStatus(err error) Status {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict):
		return StatusReview
	default:
		return StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{stage, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
