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

	"github.com/sirupsen/logrus"

	"github.com/freightpay/freightpay/internal/apierror"
	"github.com/freightpay/freightpay/model"
)

// ListEligibleTransactions returns the bank transactions a payment request
// can draw from: same beneficiary, same tenant, positive remaining balance,
// oldest first so older partially-used transfers are exhausted before newer
// ones.
//
// This is a lock-free snapshot for display. The write path re-validates every
// balance under row locks and never trusts this view.
func (l *Freightpay) ListEligibleTransactions(ctx context.Context, tenantID, requestID string) ([]model.EligibleTransaction, error) {
	ctx, span := tracer.Start(ctx, "Listing eligible transactions")
	defer span.End()

	request, err := l.getPaymentRequestScoped(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if request.BeneficiaryID == "" {
		return nil, apierror.NewAPIError(apierror.ErrBeneficiaryNotAssigned, fmt.Sprintf("Payment request '%s' has no beneficiary assigned", requestID), nil)
	}

	transactions, err := l.datasource.GetBankTransactionsByBeneficiary(ctx, tenantID, request.BeneficiaryID)
	if err != nil {
		return nil, err
	}

	allocations, err := l.datasource.GetAllocationsByBeneficiary(ctx, tenantID, request.BeneficiaryID)
	if err != nil {
		return nil, err
	}

	eligible := make([]model.EligibleTransaction, 0, len(transactions))
	for i := range transactions {
		view, err := transactions[i].ToEligible(allocations)
		if err != nil {
			// The persisted ledger is already inconsistent. Alert, don't
			// render it as a normal user-facing failure.
			logrus.WithField("transaction_id", transactions[i].TransactionID).Error(err)
			span.RecordError(err)
			return nil, apierror.NewAPIError(apierror.ErrInvariantViolation, "Ledger state is inconsistent, contact support", err.Error())
		}
		if view.RemainingBalance.IsPositive() {
			eligible = append(eligible, *view)
		}
	}

	return eligible, nil
}
