package domain

import "fmt"

// NotFoundError indicates that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

// ValidationError indicates invalid input data supplied by the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InsufficientStockError indicates that a line-item mutation would drive
// product stock below zero. The mutation is rejected with no partial effect.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}

// IntegrityViolationError indicates a broken internal invariant, e.g. an
// order row missing while its items exist. Not recoverable by the caller.
type IntegrityViolationError struct {
	Reason string
}

func (e *IntegrityViolationError) Error() string {
	return "integrity violation: " + e.Reason
}
