/*
Copyright 2025 FreightPay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package freightpay

import (
	"context"
	"fmt"

	"github.com/freightpay/freightpay/internal/apierror"
	"github.com/freightpay/freightpay/model"
)

// CreatePaymentRequest records a new payment obligation. Requests arise from
// upstream business events (vehicle trip milestones, unloading charges); they
// are created PENDING and may be created before a beneficiary is known.
func (l *Freightpay) CreatePaymentRequest(ctx context.Context, request model.PaymentRequest) (model.PaymentRequest, error) {
	if !request.RequestedAmount.IsPositive() {
		return model.PaymentRequest{}, apierror.NewAPIError(apierror.ErrInvalidAmount, "Requested amount must be positive", nil)
	}
	if !model.IsValidTransactionType(request.TransactionType) {
		return model.PaymentRequest{}, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unknown transaction type '%s'", request.TransactionType), nil)
	}
	if request.BeneficiaryID != "" {
		if _, err := l.GetBeneficiary(ctx, request.TenantID, request.BeneficiaryID); err != nil {
			return model.PaymentRequest{}, err
		}
	}
	return l.datasource.CreatePaymentRequest(ctx, request)
}

// GetPaymentRequest retrieves a payment request within the caller's tenant scope.
func (l *Freightpay) GetPaymentRequest(ctx context.Context, tenantID, requestID string) (*model.PaymentRequest, error) {
	return l.getPaymentRequestScoped(ctx, tenantID, requestID)
}

// ListPaymentRequests retrieves the tenant's payment requests, optionally
// filtered by status.
func (l *Freightpay) ListPaymentRequests(ctx context.Context, tenantID, status string, limit, offset int) ([]model.PaymentRequest, error) {
	if status != "" && status != model.StatusPending && status != model.StatusCompleted {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unknown status '%s'", status), nil)
	}
	return l.datasource.GetPaymentRequests(ctx, tenantID, status, limit, offset)
}

// AssignBeneficiary sets the payee on a payment request that does not have
// one yet. Allocation cannot target a request until this has happened.
// Reassignment is rejected: once a beneficiary is set the request may already
// hold allocations against that beneficiary's transactions, and re-pointing it
// would leave ledger rows linking the request to another payee's transfers.
func (l *Freightpay) AssignBeneficiary(ctx context.Context, tenantID, requestID, beneficiaryID string) (*model.PaymentRequest, error) {
	request, err := l.getPaymentRequestScoped(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != model.StatusPending {
		return nil, apierror.NewAPIError(apierror.ErrAlreadyCompleted, fmt.Sprintf("Payment request '%s' is already completed", requestID), nil)
	}
	if request.BeneficiaryID != "" {
		return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Payment request '%s' already has a beneficiary assigned", requestID), nil)
	}
	if _, err := l.GetBeneficiary(ctx, tenantID, beneficiaryID); err != nil {
		return nil, err
	}
	if err := l.datasource.AssignBeneficiary(ctx, requestID, beneficiaryID); err != nil {
		return nil, err
	}
	request.BeneficiaryID = beneficiaryID
	return request, nil
}
