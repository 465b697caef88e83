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

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/freightpay/freightpay/internal/apierror"
	"github.com/freightpay/freightpay/model"
)

// lockTimeout bounds how long a write-path transaction waits on a contended
// row before postgres aborts it. Allocation is interactive, so contention
// surfaces as Busy instead of queueing behind the lock holder.
const lockTimeout = "2000ms"

// WithReconciliationTxn runs fn inside one database transaction. Any error
// from fn rolls the whole transaction back; the engine never leaves a
// partial-commit state.
func (d Datasource) WithReconciliationTxn(ctx context.Context, fn func(ctx context.Context, txn ReconciliationTxn) error) error {
	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockTimeout)); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to set lock timeout", err)
	}

	if err := fn(ctx, &reconciliationTxn{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit transaction", err)
	}

	return nil
}

// GetAllocationsForRequest retrieves the allocations applied toward a payment
// request, oldest first.
func (d Datasource) GetAllocationsForRequest(ctx context.Context, tenantID, requestID string) ([]model.PaymentAllocation, error) {
	return d.queryAllocations(ctx, `
		SELECT allocation_id, tenant_id, request_id, transaction_id, allocated_amount, created_at
		FROM payment_allocations
		WHERE tenant_id = $1 AND request_id = $2
		ORDER BY created_at ASC
	`, tenantID, requestID)
}

// GetAllocationsForTransaction retrieves the allocations drawn from a bank
// transaction, oldest first.
func (d Datasource) GetAllocationsForTransaction(ctx context.Context, tenantID, transactionID string) ([]model.PaymentAllocation, error) {
	return d.queryAllocations(ctx, `
		SELECT allocation_id, tenant_id, request_id, transaction_id, allocated_amount, created_at
		FROM payment_allocations
		WHERE tenant_id = $1 AND transaction_id = $2
		ORDER BY created_at ASC
	`, tenantID, transactionID)
}

// GetAllocationsByBeneficiary retrieves every allocation drawn from any of a
// beneficiary's transactions. The eligibility view uses this to compute
// remaining balances in one pass instead of one query per transaction.
func (d Datasource) GetAllocationsByBeneficiary(ctx context.Context, tenantID, beneficiaryID string) ([]model.PaymentAllocation, error) {
	return d.queryAllocations(ctx, `
		SELECT a.allocation_id, a.tenant_id, a.request_id, a.transaction_id, a.allocated_amount, a.created_at
		FROM payment_allocations a
		JOIN bank_transactions t ON t.transaction_id = a.transaction_id
		WHERE a.tenant_id = $1 AND t.beneficiary_id = $2
		ORDER BY a.created_at ASC
	`, tenantID, beneficiaryID)
}

func (d Datasource) queryAllocations(ctx context.Context, query string, args ...interface{}) ([]model.PaymentAllocation, error) {
	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve allocations", err)
	}
	defer rows.Close()

	var allocations []model.PaymentAllocation
	for rows.Next() {
		allocation := model.PaymentAllocation{}
		err = rows.Scan(&allocation.AllocationID, &allocation.TenantID, &allocation.RequestID, &allocation.TransactionID, &allocation.AllocatedAmount, &allocation.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan allocation data", err)
		}
		allocations = append(allocations, allocation)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over allocations", err)
	}

	return allocations, nil
}

// reconciliationTxn implements ReconciliationTxn over an open *sql.Tx.
type reconciliationTxn struct {
	tx *sql.Tx
}

// GetPaymentRequestForUpdate locks the payment request row for the duration
// of the transaction and returns its current state.
func (r *reconciliationTxn) GetPaymentRequestForUpdate(ctx context.Context, id string) (*model.PaymentRequest, error) {
	row := r.tx.QueryRowContext(ctx, `
		SELECT request_id, tenant_id, sales_order_id, vehicle_id, beneficiary_id, transaction_type, requested_amount, status, notes, created_at, meta_data
		FROM payment_requests
		WHERE request_id = $1
		FOR UPDATE
	`, id)

	request, err := scanPaymentRequestFrom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Payment request with ID '%s' not found", id), err)
		}
		return nil, mapLockError(err, "Failed to lock payment request")
	}

	return request, nil
}

// GetBankTransactionForUpdate locks the bank transaction row for the duration
// of the transaction and returns its current state. The lock serializes
// concurrent allocations against the same transaction, which is what makes
// the remaining-balance re-check trustworthy.
func (r *reconciliationTxn) GetBankTransactionForUpdate(ctx context.Context, id string) (*model.BankTransaction, error) {
	row := r.tx.QueryRowContext(ctx, `
		SELECT transaction_id, tenant_id, beneficiary_id, total_paid_amount, transaction_code, payment_document_id, payment_date, created_at, meta_data
		FROM bank_transactions
		WHERE transaction_id = $1
		FOR UPDATE
	`, id)

	txn, err := scanBankTransactionFrom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Bank transaction with ID '%s' not found", id), err)
		}
		return nil, mapLockError(err, "Failed to lock bank transaction")
	}

	return txn, nil
}

// SumAllocationsForRequest sums the amounts already applied toward a request.
// Stable while the request row is held FOR UPDATE, since allocations are only
// written under that lock.
func (r *reconciliationTxn) SumAllocationsForRequest(ctx context.Context, requestID string) (decimal.Decimal, error) {
	return r.sumAllocations(ctx, `
		SELECT COALESCE(SUM(allocated_amount), 0)
		FROM payment_allocations
		WHERE request_id = $1
	`, requestID)
}

// SumAllocationsForTransaction sums the amounts already drawn from a
// transaction. Stable while the transaction row is held FOR UPDATE.
func (r *reconciliationTxn) SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	return r.sumAllocations(ctx, `
		SELECT COALESCE(SUM(allocated_amount), 0)
		FROM payment_allocations
		WHERE transaction_id = $1
	`, transactionID)
}

func (r *reconciliationTxn) sumAllocations(ctx context.Context, query, id string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.tx.QueryRowContext(ctx, query, id).Scan(&total)
	if err != nil {
		return decimal.Zero, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to sum allocations", err)
	}
	return total, nil
}

// RecordAllocation inserts a write-once allocation row.
func (r *reconciliationTxn) RecordAllocation(ctx context.Context, allocation *model.PaymentAllocation) error {
	allocation.AllocationID = model.GenerateUUIDWithSuffix("alc")
	allocation.CreatedAt = time.Now()

	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO payment_allocations (allocation_id, tenant_id, request_id, transaction_id, allocated_amount, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		allocation.AllocationID, allocation.TenantID, allocation.RequestID, allocation.TransactionID, allocation.AllocatedAmount, allocation.CreatedAt,
	)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record allocation", err)
	}

	return nil
}

// UpdatePaymentRequestStatus updates the status of a payment request.
func (r *reconciliationTxn) UpdatePaymentRequestStatus(ctx context.Context, id, status string) error {
	result, err := r.tx.ExecContext(ctx, `
		UPDATE payment_requests
		SET status = $2
		WHERE request_id = $1
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payment request status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Payment request with ID '%s' not found", id), nil)
	}

	return nil
}

// mapLockError translates a postgres lock_timeout abort (55P03) into Busy so
// the caller can distinguish contention from genuine failures.
func mapLockError(err error, message string) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "55P03" {
		return apierror.NewAPIError(apierror.ErrBusy, "Row is locked by another allocation, try again", err)
	}
	return apierror.NewAPIError(apierror.ErrInternalServer, message, err)
}
