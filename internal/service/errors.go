package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("resource not found")
	ErrMedicineNotFound   = fmt.Errorf("medicine %w", ErrNotFound)
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateMedicine  = errors.New("a medicine with this name already exists")
	ErrMedicineInUse      = errors.New("medicine has stock transactions and cannot be deleted")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrPeriodClosed       = errors.New("transaction date falls in a closed month")
	ErrMonthAlreadyClosed = errors.New("month is already closed")
	ErrPeriodNotOpen      = errors.New("month is not the open month")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrArchiveUnavailable = errors.New("no archived report for this month")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// ValidationError describes a rejected input field. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
