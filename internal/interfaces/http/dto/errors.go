package dto

import (
	"net/http"

	"github.com/landerp/backend/internal/domain/shared"
)

// Transport-level codes. Domain codes pass through unchanged.
const (
	CodeValidation      = shared.CodeValidation
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeTokenRevoked    = "TOKEN_REVOKED"
	CodeForbidden       = shared.CodeForbidden
	CodeNotFound        = shared.CodeNotFound
	CodeRequestTooLarge = "REQUEST_TOO_LARGE"
	CodeInternal        = "INTERNAL_ERROR"
)

// statusByCode maps error codes to HTTP status. Business rule violations are
// 422, races and duplicates are 409.
var statusByCode = map[string]int{
	shared.CodeValidation:          http.StatusBadRequest,
	CodeBadRequest:                 http.StatusBadRequest,
	CodeUnauthorized:               http.StatusUnauthorized,
	CodeTokenExpired:               http.StatusUnauthorized,
	CodeTokenRevoked:               http.StatusUnauthorized,
	shared.CodeForbidden:           http.StatusForbidden,
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeInsufficientArea:    http.StatusUnprocessableEntity,
	shared.CodeOverpayment:         http.StatusUnprocessableEntity,
	shared.CodeOverrefund:          http.StatusUnprocessableEntity,
	shared.CodeInsufficientBalance: http.StatusUnprocessableEntity,
	CodeRequestTooLarge:            http.StatusRequestEntityTooLarge,
	CodeInternal:                   http.StatusInternalServerError,
}

// HTTPStatus returns the status for an error code, 500 when unknown
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
