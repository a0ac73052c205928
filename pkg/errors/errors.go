// Package errors provides common domain error types for the tracka CLI.
//
// This package defines sentinel errors for common domain conditions like
// "fetch failed" or "storage unavailable" that can be used across all
// packages. Using typed errors enables consistent error handling patterns
// with errors.Is() checks.
//
// Usage:
//
//	import trerrors "github.com/otherjamesbrown/tracka-cli/pkg/errors"
//
//	// Return a domain error
//	return nil, trerrors.ErrFetchFailed
//
//	// Check for domain errors
//	if trerrors.IsFetchFailed(err) {
//	    // print the fallback text-agenda link
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrFetchFailed indicates the agenda data endpoint could not be reached
	// or returned a non-2xx response. Commands surface this as a critical
	// error with a fallback link; they never retry the fetch automatically.
	ErrFetchFailed = errors.New("agenda fetch failed")

	// ErrNotFound indicates the requested resource (meeting, session,
	// preference key) was not found.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable indicates the local preference storage backend
	// cannot be used. Callers degrade to in-memory defaults rather than
	// surfacing this to the user.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrBadTimezone indicates a timezone name could not be resolved.
	// Callers fall back to the local timezone.
	ErrBadTimezone = errors.New("unresolvable timezone")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")
)

// IsFetchFailed reports whether any error in err's chain is ErrFetchFailed.
func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageUnavailable reports whether any error in err's chain is ErrStorageUnavailable.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsBadTimezone reports whether any error in err's chain is ErrBadTimezone.
func IsBadTimezone(err error) bool {
	return errors.Is(err, ErrBadTimezone)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
