// Package errx provides small helpers for attaching context to
// package-level sentinel errors while keeping them matchable with
// errors.Is.
package errx

import (
	"errors"
	"fmt"
)

// Wrap chains err under sentinel. errors.Is matches both.
func Wrap(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// With appends formatted detail to sentinel. Format verbs may include
// %w to chain an underlying error.
func With(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w"+format, append([]any{sentinel}, args...)...)
}

// Is reports whether err matches sentinel. Thin alias kept for call-site
// symmetry with Wrap/With.
func Is(err, sentinel error) bool {
	return errors.Is(err, sentinel)
}
