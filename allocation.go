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
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/freightpay/freightpay/database"
	"github.com/freightpay/freightpay/internal/apierror"
	redlock "github.com/freightpay/freightpay/internal/lock"
	"github.com/freightpay/freightpay/model"
)

var tracer = otel.Tracer("allocation.engine")

func logAndRecordError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	logrus.Error(msg, " ", err)
	return err
}

// LinkTransactions applies an explicit set of allocations to a payment
// request. Each entry draws a caller-chosen amount from one bank transaction.
// Partial settlement is supported: the request stays PENDING until the total
// allocated meets the requested amount, at which point it flips to COMPLETED.
//
// All balance checks are re-done under row locks inside one transaction; any
// validation failure rolls the whole call back with zero writes.
func (l *Freightpay) LinkTransactions(ctx context.Context, tenantID, requestID string, entries []model.AllocationEntry) (*model.PaymentRequest, error) {
	ctx, span := tracer.Start(ctx, "Linking transactions to payment request")
	defer span.End()

	// Stateless input validation happens before any lock is taken.
	if err := validateEntries(entries); err != nil {
		return nil, err
	}

	locker, err := l.acquireRequestLock(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer l.releaseRequestLock(ctx, locker)

	var request *model.PaymentRequest
	err = l.datasource.WithReconciliationTxn(ctx, func(ctx context.Context, txn database.ReconciliationTxn) error {
		request, err = l.lockPendingRequest(ctx, txn, tenantID, requestID)
		if err != nil {
			return err
		}

		transactions, err := l.lockTransactions(ctx, txn, request, entryTransactionIDs(entries))
		if err != nil {
			return err
		}

		newTotal := decimal.Zero
		for _, entry := range entries {
			transaction := transactions[entry.TransactionID]
			remaining, err := remainingBalance(ctx, txn, transaction)
			if err != nil {
				return logAndRecordError(span, "balance check failed", err)
			}
			if entry.AllocatedAmount.GreaterThan(remaining) {
				return apierror.NewAPIError(apierror.ErrInsufficientBalance,
					fmt.Sprintf("Bank transaction '%s' has %s remaining, %s requested", entry.TransactionID, remaining.String(), entry.AllocatedAmount.String()),
					map[string]interface{}{
						"transaction_id": entry.TransactionID,
						"remaining":      remaining.String(),
						"requested":      entry.AllocatedAmount.String(),
						"shortfall":      entry.AllocatedAmount.Sub(remaining).String(),
					})
			}
			newTotal = newTotal.Add(entry.AllocatedAmount)
		}

		alreadyAllocated, err := txn.SumAllocationsForRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if alreadyAllocated.Add(newTotal).GreaterThan(request.RequestedAmount) {
			return apierror.NewAPIError(apierror.ErrOverAllocation,
				fmt.Sprintf("Allocating %s would exceed the requested amount of %s (already allocated %s)", newTotal.String(), request.RequestedAmount.String(), alreadyAllocated.String()),
				map[string]interface{}{
					"request_id":        requestID,
					"requested_amount":  request.RequestedAmount.String(),
					"already_allocated": alreadyAllocated.String(),
					"new_total":         newTotal.String(),
				})
		}

		for _, entry := range entries {
			allocation := &model.PaymentAllocation{
				TenantID:        tenantID,
				RequestID:       requestID,
				TransactionID:   entry.TransactionID,
				AllocatedAmount: entry.AllocatedAmount,
			}
			if err := txn.RecordAllocation(ctx, allocation); err != nil {
				return logAndRecordError(span, "recording allocation failed", err)
			}
		}

		if alreadyAllocated.Add(newTotal).GreaterThanOrEqual(request.RequestedAmount) {
			if err := txn.UpdatePaymentRequestStatus(ctx, requestID, model.StatusCompleted); err != nil {
				return err
			}
			request.Status = model.StatusCompleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// CompleteByConsumingTransactions settles a payment request by consuming the
// listed bank transactions in the order given, drawing
// min(remainingBalance, outstanding) from each. The call either drives the
// request to COMPLETED or fails with no side effects; it never leaves the
// request partially settled. If the listed transactions cannot cover the
// outstanding amount in full, it fails with InsufficientAggregateBalance.
//
// Overshoot is allowed: when the listed transactions hold more than the
// outstanding amount, the last one consumed is drawn down only partially and
// keeps the excess.
func (l *Freightpay) CompleteByConsumingTransactions(ctx context.Context, tenantID, requestID string, transactionIDs []string) (*model.PaymentRequest, error) {
	ctx, span := tracer.Start(ctx, "Completing payment request by consuming transactions")
	defer span.End()

	if err := validateTransactionIDs(transactionIDs); err != nil {
		return nil, err
	}

	locker, err := l.acquireRequestLock(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer l.releaseRequestLock(ctx, locker)

	var request *model.PaymentRequest
	err = l.datasource.WithReconciliationTxn(ctx, func(ctx context.Context, txn database.ReconciliationTxn) error {
		request, err = l.lockPendingRequest(ctx, txn, tenantID, requestID)
		if err != nil {
			return err
		}

		transactions, err := l.lockTransactions(ctx, txn, request, transactionIDs)
		if err != nil {
			return err
		}

		alreadyAllocated, err := txn.SumAllocationsForRequest(ctx, requestID)
		if err != nil {
			return err
		}
		outstanding := request.RequestedAmount.Sub(alreadyAllocated)
		if outstanding.IsNegative() {
			err := apierror.NewAPIError(apierror.ErrInvariantViolation,
				fmt.Sprintf("Payment request '%s' has %s allocated against a requested amount of %s", requestID, alreadyAllocated.String(), request.RequestedAmount.String()), nil)
			return logAndRecordError(span, "ledger invariant violated", err)
		}

		for _, id := range transactionIDs {
			if !outstanding.IsPositive() {
				break
			}
			remaining, err := remainingBalance(ctx, txn, transactions[id])
			if err != nil {
				return logAndRecordError(span, "balance check failed", err)
			}
			take := decimal.Min(remaining, outstanding)
			if !take.IsPositive() {
				continue
			}

			allocation := &model.PaymentAllocation{
				TenantID:        tenantID,
				RequestID:       requestID,
				TransactionID:   id,
				AllocatedAmount: take,
			}
			if err := txn.RecordAllocation(ctx, allocation); err != nil {
				return logAndRecordError(span, "recording allocation failed", err)
			}
			outstanding = outstanding.Sub(take)
		}

		if outstanding.IsPositive() {
			return apierror.NewAPIError(apierror.ErrInsufficientAggregateFunds,
				fmt.Sprintf("Listed transactions cannot cover the outstanding amount, %s short", outstanding.String()),
				map[string]interface{}{
					"request_id": requestID,
					"shortfall":  outstanding.String(),
				})
		}

		if err := txn.UpdatePaymentRequestStatus(ctx, requestID, model.StatusCompleted); err != nil {
			return err
		}
		request.Status = model.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// lockPendingRequest locks the payment request row and enforces the shared
// preconditions of both linking protocols: caller's tenant, beneficiary
// assigned, still PENDING.
func (l *Freightpay) lockPendingRequest(ctx context.Context, txn database.ReconciliationTxn, tenantID, requestID string) (*model.PaymentRequest, error) {
	request, err := txn.GetPaymentRequestForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.TenantID != tenantID {
		return nil, apierror.NewAPIError(apierror.ErrTenantMismatch, fmt.Sprintf("Payment request '%s' does not belong to the caller's tenant", requestID), nil)
	}
	if request.BeneficiaryID == "" {
		return nil, apierror.NewAPIError(apierror.ErrBeneficiaryNotAssigned, fmt.Sprintf("Payment request '%s' has no beneficiary assigned", requestID), nil)
	}
	if request.Status != model.StatusPending {
		return nil, apierror.NewAPIError(apierror.ErrAlreadyCompleted, fmt.Sprintf("Payment request '%s' is already completed", requestID), nil)
	}
	return request, nil
}

// lockTransactions locks every referenced bank transaction row and checks
// eligibility against the request. Rows are locked in sorted id order so two
// concurrent calls touching overlapping transaction sets cannot deadlock;
// processing order stays the caller's.
func (l *Freightpay) lockTransactions(ctx context.Context, txn database.ReconciliationTxn, request *model.PaymentRequest, ids []string) (map[string]*model.BankTransaction, error) {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	transactions := make(map[string]*model.BankTransaction, len(sorted))
	for _, id := range sorted {
		transaction, err := txn.GetBankTransactionForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if transaction.TenantID != request.TenantID || transaction.BeneficiaryID != request.BeneficiaryID {
			return nil, apierror.NewAPIError(apierror.ErrTransactionNotEligible,
				fmt.Sprintf("Bank transaction '%s' does not belong to the request's beneficiary", id),
				map[string]interface{}{"transaction_id": id})
		}
		transactions[id] = transaction
	}
	return transactions, nil
}

// remainingBalance re-computes a locked transaction's unconsumed amount from
// the ledger. A negative remainder means the persisted state already violates
// the no-over-allocation invariant.
func remainingBalance(ctx context.Context, txn database.ReconciliationTxn, transaction *model.BankTransaction) (decimal.Decimal, error) {
	applied, err := txn.SumAllocationsForTransaction(ctx, transaction.TransactionID)
	if err != nil {
		return decimal.Zero, err
	}
	remaining := transaction.TotalPaidAmount.Sub(applied)
	if remaining.IsNegative() {
		return decimal.Zero, apierror.NewAPIError(apierror.ErrInvariantViolation,
			fmt.Sprintf("Bank transaction '%s' has %s allocated against a total of %s", transaction.TransactionID, applied.String(), transaction.TotalPaidAmount.String()), nil)
	}
	return remaining, nil
}

// validateEntries rejects malformed allocation sets before any lock is taken.
func validateEntries(entries []model.AllocationEntry) error {
	if len(entries) == 0 {
		return apierror.NewAPIError(apierror.ErrInvalidAllocationSet, "Allocation list must not be empty", nil)
	}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.TransactionID == "" {
			return apierror.NewAPIError(apierror.ErrInvalidAllocationSet, "Allocation entry is missing a transaction id", nil)
		}
		if seen[entry.TransactionID] {
			return apierror.NewAPIError(apierror.ErrInvalidAllocationSet, fmt.Sprintf("Bank transaction '%s' is listed more than once", entry.TransactionID), nil)
		}
		seen[entry.TransactionID] = true
	}
	for _, entry := range entries {
		if !entry.AllocatedAmount.IsPositive() {
			return apierror.NewAPIError(apierror.ErrInvalidAmount, fmt.Sprintf("Allocated amount for transaction '%s' must be positive", entry.TransactionID), nil)
		}
	}
	return nil
}

func validateTransactionIDs(ids []string) error {
	if len(ids) == 0 {
		return apierror.NewAPIError(apierror.ErrInvalidAllocationSet, "Transaction list must not be empty", nil)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return apierror.NewAPIError(apierror.ErrInvalidAllocationSet, "Transaction list contains an empty id", nil)
		}
		if seen[id] {
			return apierror.NewAPIError(apierror.ErrInvalidAllocationSet, fmt.Sprintf("Bank transaction '%s' is listed more than once", id), nil)
		}
		seen[id] = true
	}
	return nil
}

func entryTransactionIDs(entries []model.AllocationEntry) []string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.TransactionID
	}
	return ids
}

// acquireRequestLock takes a short advisory lock on the payment request so a
// double-submitted linking call fails fast with Busy instead of piling up on
// the row locks. The database locks remain the correctness mechanism; this
// lock is an interactivity measure and is skipped when redis is not
// configured.
func (l *Freightpay) acquireRequestLock(ctx context.Context, requestID string) (*redlock.Locker, error) {
	if l.redis == nil {
		return nil, nil
	}
	locker := redlock.NewLocker(l.redis, "alloc:"+requestID, model.GenerateUUIDWithSuffix("loc"))
	if err := locker.WaitLock(ctx, l.lockTTL, l.lockWait); err != nil {
		if err == redlock.ErrLockHeld {
			return nil, apierror.NewAPIError(apierror.ErrBusy, fmt.Sprintf("Payment request '%s' is being allocated by another caller", requestID), nil)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to acquire allocation lock", err)
	}
	return locker, nil
}

func (l *Freightpay) releaseRequestLock(ctx context.Context, locker *redlock.Locker) {
	if locker == nil {
		return
	}
	if err := locker.Unlock(ctx); err != nil {
		logrus.Warnf("failed to release allocation lock: %v", err)
	}
}
