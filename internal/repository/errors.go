package repository

import (
	"errors"
	"fmt"

	"gitlab.com/dirk.krummacker/contactbook-service/internal/storage"
)

var (
	// ErrContactNotFound is returned when no contact has the requested id.
	ErrContactNotFound = errors.New("contact not found")
	// ErrMethodNotFound is returned when the contact has no method with the requested id.
	ErrMethodNotFound = errors.New("contact method not found")
)

// ValidationError reports input that cannot be stored. The message is meant for the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UninitializedError reports that the tables of the contact book do not exist yet.
type UninitializedError struct {
	Err error
}

func (e *UninitializedError) Error() string {
	return "database is not initialized: " + e.Err.Error()
}

func (e *UninitializedError) Unwrap() error {
	return e.Err
}

// translate wraps a storage error with the operation that failed. Errors caused by a missing
// schema become an UninitializedError.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if storage.IsUninitialized(err) {
		return &UninitializedError{Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
