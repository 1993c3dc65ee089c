package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the registry, the provider adapters and the API layer.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrValidation          = errors.New("validation failed")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProviderError describes a failed call to an external provider.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Retryable  bool
	Conflict   bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is match the taxonomy sentinels.
func (e *ProviderError) Is(target error) bool {
	if e.Conflict {
		return target == ErrConflict
	}
	return target == ErrProviderUnavailable
}

// IsRetryable reports whether err is a provider failure worth retrying.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// Validationf builds an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
