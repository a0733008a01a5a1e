package storage

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

// ProviderError tags a storage failure with the provider that produced it.
// The Registry uses the tag to decide whether a local fallback applies; Err
// wraps one of the storage sentinels in common/errors.
type ProviderError struct {
	Provider ProviderKind
	Op       string
	Err      error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s storage %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ProviderOf returns the provider kind recorded in err, if any
func ProviderOf(err error) (ProviderKind, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Provider, true
	}
	return "", false
}

// IsConfigurationError reports whether err means the provider's
// configuration or credentials were rejected
func IsConfigurationError(err error) bool {
	return errors.Is(err, apperrors.ErrStorageConfiguration)
}

// IsNotFound reports whether err means the object does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrStorageNotFound)
}

// IsUnavailable reports whether err means no provider could be brought up
func IsUnavailable(err error) bool {
	return errors.Is(err, apperrors.ErrStorageUnavailable)
}

func configError(kind ProviderKind, op, format string, args ...interface{}) error {
	return &ProviderError{
		Provider: kind,
		Op:       op,
		Err:      apperrors.ErrStorageConfiguration.WithMessagef(format, args...),
	}
}

func configErrorCause(kind ProviderKind, op string, cause error) error {
	return &ProviderError{
		Provider: kind,
		Op:       op,
		Err:      apperrors.ErrStorageConfiguration.WithCause(cause),
	}
}

func upstreamError(kind ProviderKind, op string, cause error) error {
	return &ProviderError{
		Provider: kind,
		Op:       op,
		Err:      apperrors.ErrStorageUpstream.WithCause(cause),
	}
}

func notFoundError(kind ProviderKind, op, ref string) error {
	return &ProviderError{
		Provider: kind,
		Op:       op,
		Err:      apperrors.ErrStorageNotFound.WithMessagef("Object %q not found in %s storage", ref, kind),
	}
}

// tagProvider makes sure err carries kind and a storage error code. Errors
// that already carry a provider are returned unchanged.
func tagProvider(kind ProviderKind, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := ProviderOf(err); ok {
		return err
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return &ProviderError{Provider: kind, Op: op, Err: err}
	}
	return upstreamError(kind, op, err)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
