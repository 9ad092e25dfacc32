package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Store.Get for an unknown user.
	ErrNotFound = errors.New("progress not found")
	// ErrConflict is returned when a versioned write loses a race.
	ErrConflict = errors.New("progress version conflict")
	// ErrPersistence marks every failure of the underlying store.
	ErrPersistence = errors.New("persistence error")
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// PersistenceError wraps a store failure with the operation and user it
// happened on. errors.Is matches both ErrPersistence and the cause.
type PersistenceError struct {
	Op     string
	UserID string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s %s: %v", e.Op, e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
