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

// RecordBankTransaction records one real-world bulk transfer to a
// beneficiary. The amount is immutable after this call; a wrong amount is
// corrected by recording a new transaction.
func (l *Freightpay) RecordBankTransaction(ctx context.Context, txn model.BankTransaction) (model.BankTransaction, error) {
	if !txn.TotalPaidAmount.IsPositive() {
		return model.BankTransaction{}, apierror.NewAPIError(apierror.ErrInvalidAmount, "Total paid amount must be positive", nil)
	}
	if txn.TransactionCode == "" {
		return model.BankTransaction{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Transaction code is required", nil)
	}
	if _, err := l.GetBeneficiary(ctx, txn.TenantID, txn.BeneficiaryID); err != nil {
		return model.BankTransaction{}, err
	}
	return l.datasource.RecordBankTransaction(ctx, txn)
}

// GetBankTransaction retrieves a bank transaction within the caller's tenant scope.
func (l *Freightpay) GetBankTransaction(ctx context.Context, tenantID, transactionID string) (*model.BankTransaction, error) {
	txn, err := l.datasource.GetBankTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.TenantID != tenantID {
		return nil, apierror.NewAPIError(apierror.ErrTenantMismatch, fmt.Sprintf("Bank transaction '%s' does not belong to the caller's tenant", transactionID), nil)
	}
	return txn, nil
}

// ListBankTransactions retrieves a beneficiary's recorded transfers, oldest first.
func (l *Freightpay) ListBankTransactions(ctx context.Context, tenantID, beneficiaryID string) ([]model.BankTransaction, error) {
	return l.datasource.GetBankTransactionsByBeneficiary(ctx, tenantID, beneficiaryID)
}

// GetAllocationsForRequest returns the ledger rows applied toward a request.
func (l *Freightpay) GetAllocationsForRequest(ctx context.Context, tenantID, requestID string) ([]model.PaymentAllocation, error) {
	if _, err := l.getPaymentRequestScoped(ctx, tenantID, requestID); err != nil {
		return nil, err
	}
	return l.datasource.GetAllocationsForRequest(ctx, tenantID, requestID)
}

// GetAllocationsForTransaction returns the ledger rows drawn from a transaction.
func (l *Freightpay) GetAllocationsForTransaction(ctx context.Context, tenantID, transactionID string) ([]model.PaymentAllocation, error) {
	if _, err := l.GetBankTransaction(ctx, tenantID, transactionID); err != nil {
		return nil, err
	}
	return l.datasource.GetAllocationsForTransaction(ctx, tenantID, transactionID)
}
