package gumtree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by Login when the site renders its
	// error notification after the credentials are posted.
	ErrInvalidCredentials = errors.New("incorrect credentials provided")

	// ErrSiteChanged is wrapped by every error caused by a page no longer
	// looking the way this package expects it to.
	ErrSiteChanged = errors.New("site structure changed")

	// ErrUnsupportedInput is returned when the login form contains an input
	// that cannot be filled in automatically.
	ErrUnsupportedInput = errors.New("unsupported input")
)

func siteChanged(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSiteChanged, fmt.Sprintf(format, args...))
}

// CategoryError is returned when a category name is not a known leaf category.
type CategoryError struct {
	Name string
	// Suggestion is a known category with a similar name, it may be empty.
	Suggestion string
}

func (e *CategoryError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown category '%s', did you mean '%s'?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown category '%s'", e.Name)
}

var (
	ErrMalformedPrice   = errors.New("expected price to have both 'amount' and 'type'")
	ErrPriceNotNumeric  = errors.New("'amount' is not a valid decimal number")
	ErrPriceNotPositive = errors.New("'amount' must be greater than zero")
	ErrUnknownPriceType = errors.New("unknown price type")
	ErrUnknownCondition = errors.New("unknown condition")
)

// ValidationError is returned by NewListing, Reason is one of the Err* listing
// errors above and can be matched with errors.Is.
type ValidationError struct {
	Field  string
	Value  string
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid listing %s '%s': %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid listing %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// HTTPStatusError is returned by the HTTP capability when the site answers
// with a 4xx or 5xx status.
type HTTPStatusError struct {
	Method string
	Path   string
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}
