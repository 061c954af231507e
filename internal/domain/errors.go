package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound means the referenced product does not exist.
	// Terminal: callers must not retry with the same reference.
	ErrProductNotFound = errors.New("product not found")

	// ErrOrderNotFound means the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrConflict means a conditional stock update lost the race to a
	// concurrent reservation and the retry budget is exhausted. Transient:
	// callers may retry with backoff.
	ErrConflict = errors.New("stock reservation conflict")

	// ErrInvalidQuantity rejects non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInvalidInput rejects malformed catalog-management payloads.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyCheckout rejects a checkout call with no lines.
	ErrEmptyCheckout = errors.New("checkout requires at least one line")

	// ErrStoreUnavailable wraps any underlying storage failure. Never
	// retried silently inside the core.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// InsufficientStockError means the requested quantity exceeds the currently
// available stock. Terminal for the requested quantity; Available lets the
// caller retry with a smaller one.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidFilterError rejects a catalog query whose bounds are malformed.
type InvalidFilterError struct {
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return "invalid filter: " + e.Reason
}

// CheckoutError reports the first failing line of a checkout call. Lines
// before LineIndex were reserved and stay decremented; there is no
// compensating rollback.
type CheckoutError struct {
	LineIndex int
	ProductID string
	Quantity  int
	Err       error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed at line %d (product %s, quantity %d): %v",
		e.LineIndex, e.ProductID, e.Quantity, e.Err)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}
