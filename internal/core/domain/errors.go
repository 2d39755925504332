package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSourceNotFound        = errors.New("source file not found")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrConverterFailure      = errors.New("converter failure")
	ErrValidationFailed      = errors.New("validation failed")
	ErrDirectoryCreate       = errors.New("directory create failed")
	ErrJobNotFound           = errors.New("job not found")
	ErrBatchNotFound         = errors.New("batch not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrTemporary             = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ErrorKindName returns the stable taxonomy label for an error, used in
// outcomes, persisted jobs and metrics labels. Unclassified errors report
// as "internal".
func ErrorKindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceNotFound):
		return "not_found"
	case errors.Is(err, ErrUnsupportedConversion):
		return "unsupported_conversion"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrConverterFailure):
		return "converter_failure"
	case errors.Is(err, ErrDirectoryCreate):
		return "directory_create"
	case errors.Is(err, ErrJobNotFound):
		return "job_not_found"
	case errors.Is(err, ErrBatchNotFound):
		return "batch_not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
