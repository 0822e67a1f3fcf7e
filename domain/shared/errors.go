/*
Package shared holds what the cart, order and payment subdomains have in
common: money, actors, events, the unit of work and the error taxonomy.

Failures are classified by sentinel (errors.Is) and carried in a
DomainError that remembers where it was raised. HTTP status codes are
assigned in pkg/errors, never here.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict marks a stale version or a uniqueness race; the unit of
	// work retries operations failing with it.
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// DomainError is a classified failure with the entity it concerns
// ("cart", "order", "food", "address") and the frames of the code that
// raised it.
type DomainError struct {
	Err     error
	Entity  string
	Field   string
	Value   string
	Message string

	pcs []uintptr
}

func (e *DomainError) Error() string { return e.Message }
func (e *DomainError) Unwrap() error { return e.Err }

// Stack resolves the captured frames.
func (e *DomainError) Stack() []string { return FormatStack(e.pcs) }

// Stacker is implemented by errors that know where they were raised.
type Stacker interface {
	Stack() []string
}

// CaptureStack records program counters, skipping skip frames
// (runtime.Callers itself counts as one).
func CaptureStack(skip int) []uintptr {
	pcs := make([]uintptr, 32)
	return pcs[:runtime.Callers(skip, pcs)]
}

const maxStackFrames = 10

// FormatStack renders up to ten frames outside the Go runtime as
// "file:line function".
func FormatStack(pcs []uintptr) []string {
	if len(pcs) == 0 {
		return nil
	}
	var out []string
	frames := runtime.CallersFrames(pcs)
	for len(out) < maxStackFrames {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			out = append(out, fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Function))
		}
		if !more {
			break
		}
	}
	return out
}

// raise builds a DomainError whose stack starts depth frames above it.
func raise(depth int, sentinel error, entity, field, value, msg string) *DomainError {
	return &DomainError{
		Err:     sentinel,
		Entity:  entity,
		Field:   field,
		Value:   value,
		Message: msg,
		pcs:     CaptureStack(depth + 3),
	}
}

// NewNotFoundError reports that no entity has field = value.
func NewNotFoundError(entity, field string, value any) error {
	v := fmt.Sprint(value)
	return raise(1, ErrNotFound, entity, field, v, fmt.Sprintf("%s not found with %s: %s", entity, field, v))
}

func NewInvalidStateError(entity, message string) error {
	return raise(1, ErrInvalidState, entity, "", "", message)
}

// NewValidationError rejects input on field.
func NewValidationError(entity, field, reason string) error {
	return raise(1, ErrInvalidInput, entity, field, "", reason)
}

func NewConflictError(entity, message string) error {
	return raise(1, ErrConflict, entity, "", "", message)
}

func NewForbiddenError(entity, reason string) error {
	return raise(1, ErrForbidden, entity, "", "", reason)
}

// NewError is for subdomain constructors wrapping their own sentinels
// (cart.ErrConcurrentModification, order.ErrRestaurantClosed). The stack
// starts at whoever called that constructor.
func NewError(sentinel error, entity, message string) *DomainError {
	return raise(2, sentinel, entity, "", "", message)
}

// AsDomainError finds the DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}
