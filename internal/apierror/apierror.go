package apierror

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrConflict                   ErrorCode = "CONFLICT"
	ErrTenantMismatch             ErrorCode = "TENANT_MISMATCH"
	ErrBeneficiaryNotAssigned     ErrorCode = "BENEFICIARY_NOT_ASSIGNED"
	ErrAlreadyCompleted           ErrorCode = "ALREADY_COMPLETED"
	ErrInvalidAllocationSet       ErrorCode = "INVALID_ALLOCATION_SET"
	ErrInvalidAmount              ErrorCode = "INVALID_AMOUNT"
	ErrTransactionNotEligible     ErrorCode = "TRANSACTION_NOT_ELIGIBLE"
	ErrInsufficientBalance        ErrorCode = "INSUFFICIENT_BALANCE"
	ErrInsufficientAggregateFunds ErrorCode = "INSUFFICIENT_AGGREGATE_BALANCE"
	ErrOverAllocation             ErrorCode = "OVER_ALLOCATION"
	ErrInvariantViolation         ErrorCode = "INVARIANT_VIOLATION"
	ErrBusy                       ErrorCode = "BUSY"
	ErrBadRequest                 ErrorCode = "BAD_REQUEST"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	if code == ErrInvariantViolation || code == ErrInternalServer {
		logrus.WithField("code", code).Error(message, " ", details)
	}
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Is reports whether err is an APIError carrying the given code.
func Is(err error, code ErrorCode) bool {
	apiErr, ok := err.(APIError)
	return ok && apiErr.Code == code
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound, ErrTenantMismatch:
			return http.StatusNotFound
		case ErrConflict, ErrAlreadyCompleted, ErrBusy:
			return http.StatusConflict
		case ErrBeneficiaryNotAssigned, ErrInvalidAllocationSet, ErrInvalidAmount,
			ErrTransactionNotEligible, ErrInsufficientBalance, ErrInsufficientAggregateFunds,
			ErrOverAllocation, ErrBadRequest, ErrInvalidInput:
			return http.StatusBadRequest
		case ErrInvariantViolation, ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
