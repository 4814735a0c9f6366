package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an operation expected an existing document or active shift
	ErrNotFound = errors.New("not found")

	// ErrTransientWrite is returned when a store write failed and its single retry failed too
	ErrTransientWrite = errors.New("write failed, please try again")

	// ErrInvariantViolation marks a broken single-active-shift invariant found on read.
	// It is logged and repaired, never returned to callers.
	ErrInvariantViolation = errors.New("invariant violation")

	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrClosed       = errors.New("closed")
	ErrForbidden    = errors.New("forbidden")
)

// NewError prefixes a sentinel error with the entity it concerns, keeping errors.Is working
func NewError(entity string, err error) error {
	return fmt.Errorf("%s: %w", strings.ToLower(entity), err)
}
