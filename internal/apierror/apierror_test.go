package apierror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freightpay/freightpay/internal/apierror"
)

func TestNewAPIError(t *testing.T) {
	err := apierror.NewAPIError(apierror.ErrNotFound, "Payment request not found", nil)
	assert.Equal(t, apierror.ErrNotFound, err.Code)
	assert.Equal(t, "Payment request not found", err.Message)
	assert.Nil(t, err.Details)
	assert.Equal(t, "NOT_FOUND: Payment request not found", err.Error())
}

func TestNewAPIErrorWithDetails(t *testing.T) {
	details := map[string]interface{}{"transaction_id": "btx_1"}
	err := apierror.NewAPIError(apierror.ErrInsufficientBalance, "Not enough remaining balance", details)
	assert.Equal(t, apierror.ErrInsufficientBalance, err.Code)
	assert.Equal(t, details, err.Details)
}

func TestIs(t *testing.T) {
	err := apierror.NewAPIError(apierror.ErrBusy, "Request is being processed", nil)
	assert.True(t, apierror.Is(err, apierror.ErrBusy))
	assert.False(t, apierror.Is(err, apierror.ErrConflict))
	assert.False(t, apierror.Is(errors.New("plain"), apierror.ErrBusy))
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", apierror.NewAPIError(apierror.ErrNotFound, "missing", nil), http.StatusNotFound},
		{"tenant mismatch hides existence", apierror.NewAPIError(apierror.ErrTenantMismatch, "not yours", nil), http.StatusNotFound},
		{"conflict", apierror.NewAPIError(apierror.ErrConflict, "duplicate code", nil), http.StatusConflict},
		{"already completed", apierror.NewAPIError(apierror.ErrAlreadyCompleted, "done", nil), http.StatusConflict},
		{"busy", apierror.NewAPIError(apierror.ErrBusy, "locked", nil), http.StatusConflict},
		{"beneficiary not assigned", apierror.NewAPIError(apierror.ErrBeneficiaryNotAssigned, "no beneficiary", nil), http.StatusBadRequest},
		{"invalid allocation set", apierror.NewAPIError(apierror.ErrInvalidAllocationSet, "bad set", nil), http.StatusBadRequest},
		{"invalid amount", apierror.NewAPIError(apierror.ErrInvalidAmount, "non-positive", nil), http.StatusBadRequest},
		{"insufficient balance", apierror.NewAPIError(apierror.ErrInsufficientBalance, "short", nil), http.StatusBadRequest},
		{"insufficient aggregate", apierror.NewAPIError(apierror.ErrInsufficientAggregateFunds, "short", nil), http.StatusBadRequest},
		{"over allocation", apierror.NewAPIError(apierror.ErrOverAllocation, "too much", nil), http.StatusBadRequest},
		{"invariant violation", apierror.NewAPIError(apierror.ErrInvariantViolation, "ledger corrupt", nil), http.StatusInternalServerError},
		{"internal", apierror.NewAPIError(apierror.ErrInternalServer, "boom", nil), http.StatusInternalServerError},
		{"non api error", errors.New("some random error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apierror.MapErrorToHTTPStatus(tt.err))
		})
	}
}
