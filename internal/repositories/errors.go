package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row matches the query.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")
)

// IsNotFoundError reports whether err (or anything it wraps) is ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is a unique constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// WrapError annotates a store failure with the failing operation while
// preserving the sentinel for errors.Is checks upstream.
func WrapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
