package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrModelNotFound = fmt.Errorf("%w: vehicle model", ErrNotFound)

	// Table errors
	ErrNotRegistered     = errors.New("table not registered")
	ErrSourceUnavailable = errors.New("table source unavailable")

	// Input errors
	ErrInvalidQuery = errors.New("invalid query")
)

// NewNotRegisteredError reports a table name without a declaration
func NewNotRegisteredError(name string) error {
	return fmt.Errorf("%w: %q", ErrNotRegistered, name)
}

// NewSourceUnavailableError reports a table whose backing data could not be
// fetched or parsed. Credentials in the locator are masked.
func NewSourceUnavailableError(name, locator string, cause error) error {
	return fmt.Errorf("%w: table %q from %s: %w", ErrSourceUnavailable, name, RedactLocator(locator), cause)
}

// NewNotFoundError reports a named resource absent from the data
func NewNotFoundError(kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
}

// NewModelNotFoundError reports a model absent from the policy view
func NewModelNotFoundError(model string) error {
	return fmt.Errorf("%w %q", ErrModelNotFound, model)
}

// NewInvalidQueryError reports a malformed request field
func NewInvalidQueryError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidQuery, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsModelNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}

func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}
