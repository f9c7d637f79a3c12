package order

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ErrNumberConflict is returned when every insert attempt lost an
// order_number race. Callers may retry the whole operation.
var ErrNumberConflict = errors.New("order number conflict")

// MissingOrdersError aborts a bulk operation because some requested orders do
// not exist. Nothing has been written when it is returned.
type MissingOrdersError struct {
	IDs []int64
}

func (e *MissingOrdersError) Error() string {
	return fmt.Sprintf("orders not found: %v", e.IDs)
}

// InvalidValueError rejects a status or payment status outside its enumeration.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Field, e.Value)
}
