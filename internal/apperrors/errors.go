package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the user lacks the role or capability required for the operation.
// Callers wrap it with the missing capability and the user's actual role.
var ErrForbidden = errors.New("permission denied")

// ErrInsufficientFunds indicates a transfer or contribution exceeds the source
// account's current balance. Returned before any mutation occurs.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrCapacityExceeded indicates the family member limit has been reached.
var ErrCapacityExceeded = errors.New("family member capacity exceeded")

// ErrConflict indicates the resource is in a state that does not permit the operation.
var ErrConflict = errors.New("resource state conflict")

// ErrConsistencyRepair indicates drift was detected between a derived aggregate and its
// recomputation. Surfaced to operational tooling and logs, never to end users.
var ErrConsistencyRepair = errors.New("consistency repair needed")

// ErrExternalDegraded indicates a collaborator (notification dispatch, cache refresh)
// failed. It never blocks or rolls back a core ledger mutation.
var ErrExternalDegraded = errors.New("external service degraded")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside the wrapped cause. Repositories
// use it for infrastructure failures that have no sentinel of their own.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
