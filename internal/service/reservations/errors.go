package reservations

import (
	"fmt"

	"github.com/google/uuid"

	"campsite/backend/internal/domain"
	"campsite/backend/internal/store"
)

// ValidationError reports malformed or policy-violating input. It is always
// raised before the store is contacted.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports that the store refused Dates because another
// reservation already occupies part of it.
type ConflictError struct {
	Dates domain.DateInterval
}

func (e *ConflictError) Error() string {
	start, end := domain.ToInclusiveUserRange(e.Dates)
	return fmt.Sprintf("the campsite is already booked somewhere between %s and %s; please pick another range",
		start.Format(domain.DateLayout), end.Format(domain.DateLayout))
}

func (e *ConflictError) Unwrap() error {
	return store.ErrConflict
}

type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reservation %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}

// StoreUnavailableError wraps a transport or timeout failure talking to the
// store. It is the only retryable class; this package never retries itself.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return "store unavailable during " + e.Op + ": " + e.Err.Error()
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}
