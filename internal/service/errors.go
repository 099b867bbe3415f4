package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/tv-ad-booking/internal/repository"
)

var (
	// ErrNotFound indicates the slot, booking or notification does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the row exists but is not in a state that allows
	// the operation.
	ErrConflict = errors.New("conflict")
	// ErrSlotUnavailable is returned to the loser of a booking race.
	ErrSlotUnavailable = errors.New("this slot is no longer available, please choose another")
	// ErrInvalidState is returned when deciding a booking that is not pending.
	ErrInvalidState = errors.New("this booking has already been decided")
	// ErrForbidden indicates the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrTransient indicates a storage or network hiccup; the whole
	// operation may be retried.
	ErrTransient = errors.New("temporarily unavailable, please retry")
)

// ValidationError aggregates field-level validation failures.  Nothing has
// been written when it is returned.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.FieldErrors) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.FieldErrors))
	for k := range e.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.FieldErrors[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{FieldErrors: map[string]string(f)}
}

// storeErr maps repository errors onto the service taxonomy.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	case errors.Is(err, repository.ErrForbidden):
		return ErrForbidden
	case repository.IsTransient(err):
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrTransient):
		return "transient"
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	return "internal"
}
