package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the storage layer when no row matched
var ErrNotFound = errors.New("record not found")

// DuplicateError is returned by the storage layer when a unique constraint was violated
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key violates %q: %v", e.Constraint, e.Err)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err is a unique violation, returning the constraint name
func IsDuplicate(err error) (string, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Constraint, true
	}
	return "", false
}
