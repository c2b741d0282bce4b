package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStatus is returned when a requested status is not in the store's legal set
	ErrInvalidStatus = errors.New("no legal status submitted")

	// ErrOrderNotFound is returned when an id does not resolve to an order record
	ErrOrderNotFound = errors.New("order not found")

	// ErrDateParse is returned for a malformed start or end value
	ErrDateParse = errors.New("invalid date")
)

// InvalidStatusError carries the legal statuses so the caller can list them.
type InvalidStatusError struct {
	Status string
	Legal  []string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidStatus, e.Status)
}

func (e *InvalidStatusError) Unwrap() error {
	return ErrInvalidStatus
}

// DateParseError reports which filter held the malformed value
type DateParseError struct {
	Field string
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid %s date %q: %v", e.Field, e.Value, e.Err)
}

// Is matches ErrDateParse
func (e *DateParseError) Is(target error) bool {
	return target == ErrDateParse
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

func orderNotFound(id int64) error {
	return fmt.Errorf("%w: #%d", ErrOrderNotFound, id)
}
