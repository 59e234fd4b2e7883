package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFound creates a NotFoundError for a resource/id pair
func NewNotFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError indicates a uniqueness or duplicate-state violation,
// e.g. a second snapshot for the same account and date.
type ConflictError struct {
	Resource string
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Detail)
}

// NewConflict creates a ConflictError
func NewConflict(resource, detail string) error {
	return &ConflictError{Resource: resource, Detail: detail}
}

// ValidationError indicates malformed or out-of-range input.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Detail)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Detail)
}

// NewValidation creates a ValidationError
func NewValidation(field, detail string) error {
	return &ValidationError{Field: field, Detail: detail}
}

// InsufficientFundsError is returned when a BUY exceeds the cash balance.
type InsufficientFundsError struct {
	Need decimal.Decimal
	Have decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: need %s, have %s", e.Need.StringFixed(2), e.Have.StringFixed(2))
}

// InsufficientSharesError is returned when a SELL exceeds the held quantity.
type InsufficientSharesError struct {
	Need decimal.Decimal
	Have decimal.Decimal
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares: need %s, have %s", e.Need, e.Have)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsInsufficient reports whether err is an insufficient-funds or
// insufficient-shares error
func IsInsufficient(err error) bool {
	var f *InsufficientFundsError
	var s *InsufficientSharesError
	return errors.As(err, &f) || errors.As(err, &s)
}
