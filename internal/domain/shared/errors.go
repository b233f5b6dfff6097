package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error codes shared by every bounded context.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidState        = "INVALID_STATE"
	CodeInsufficientArea    = "INSUFFICIENT_AREA"
	CodeOverpayment         = "OVERPAYMENT"
	CodeOverrefund          = "OVERREFUND"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeForbidden           = "FORBIDDEN"
)

// DomainError represents a domain-level error.
// Details carries machine-readable context such as the bound that was exceeded.
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that errors.Is(err, ErrNotFound) works
// for any NOT_FOUND error, not only the sentinel value.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithDetail returns a copy of the error with an extra detail entry
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientBalance = NewDomainError(CodeInsufficientBalance, "Insufficient balance available")
)

// NewValidationError reports malformed or missing input. Never retried.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewInvalidStateError reports an operation that is not legal in the entity's current state.
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewInsufficientAreaError reports that requested area exceeds what the RS number has left.
func NewInsufficientAreaError(requested, available decimal.Decimal) *DomainError {
	return &DomainError{
		Code:    CodeInsufficientArea,
		Message: fmt.Sprintf("Requested area %s exceeds remaining area %s", requested.String(), available.String()),
		Details: map[string]any{
			"requested": requested.String(),
			"available": available.String(),
		},
	}
}

// NewOverpaymentError reports a receipt that would drive a sale's due amount below zero.
func NewOverpaymentError(amount, due decimal.Decimal) *DomainError {
	return &DomainError{
		Code:    CodeOverpayment,
		Message: fmt.Sprintf("Payment of %s exceeds due amount %s", amount.StringFixed(2), due.StringFixed(2)),
		Details: map[string]any{
			"amount": amount.StringFixed(2),
			"due":    due.StringFixed(2),
		},
	}
}

// NewOverrefundError reports a refund payment above the outstanding refundable amount.
func NewOverrefundError(amount, remaining decimal.Decimal) *DomainError {
	return &DomainError{
		Code:    CodeOverrefund,
		Message: fmt.Sprintf("Refund of %s exceeds remaining refundable amount %s", amount.StringFixed(2), remaining.StringFixed(2)),
		Details: map[string]any{
			"amount":    amount.StringFixed(2),
			"remaining": remaining.StringFixed(2),
		},
	}
}

// NewConcurrencyConflictError reports an optimistic-lock mismatch. Safe to retry from fresh state.
func NewConcurrencyConflictError(entity string, id fmt.Stringer) *DomainError {
	return &DomainError{
		Code:    CodeConcurrencyConflict,
		Message: fmt.Sprintf("%s %s was modified by another process", entity, id.String()),
		Details: map[string]any{
			"entity": entity,
			"id":     id.String(),
		},
	}
}

// NewInsufficientBalanceError reports an account debit larger than the current balance.
func NewInsufficientBalanceError(amount, balance decimal.Decimal) *DomainError {
	return &DomainError{
		Code:    CodeInsufficientBalance,
		Message: fmt.Sprintf("Debit of %s exceeds account balance %s", amount.StringFixed(2), balance.StringFixed(2)),
		Details: map[string]any{
			"amount":  amount.StringFixed(2),
			"balance": balance.StringFixed(2),
		},
	}
}

// IsCode reports whether err is a DomainError carrying the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
