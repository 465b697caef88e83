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
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/freightpay/freightpay/internal/apierror"
	"github.com/freightpay/freightpay/model"
)

// RecordBankTransaction inserts a new bank transaction. TotalPaidAmount is
// immutable from here on; corrections require a new transaction. A duplicate
// transaction_code within the tenant surfaces as a Conflict via the unique
// constraint rather than a pre-check, so concurrent intake cannot race it.
func (d Datasource) RecordBankTransaction(ctx context.Context, txn model.BankTransaction) (model.BankTransaction, error) {
	metaDataJSON, err := json.Marshal(txn.MetaData)
	if err != nil {
		return model.BankTransaction{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	txn.TransactionID = model.GenerateUUIDWithSuffix("btx")
	txn.CreatedAt = time.Now()
	if txn.PaymentDate.IsZero() {
		txn.PaymentDate = txn.CreatedAt
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO bank_transactions (transaction_id, tenant_id, beneficiary_id, total_paid_amount, transaction_code, payment_document_id, payment_date, created_at, meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		txn.TransactionID, txn.TenantID, txn.BeneficiaryID, txn.TotalPaidAmount, txn.TransactionCode, txn.PaymentDocumentID, txn.PaymentDate, txn.CreatedAt, metaDataJSON,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.BankTransaction{}, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction code '%s' already recorded", txn.TransactionCode), err)
		}
		return model.BankTransaction{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record bank transaction", err)
	}

	return txn, nil
}

// GetBankTransactionByID retrieves a bank transaction by its unique ID.
func (d Datasource) GetBankTransactionByID(ctx context.Context, id string) (*model.BankTransaction, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, tenant_id, beneficiary_id, total_paid_amount, transaction_code, payment_document_id, payment_date, created_at, meta_data
		FROM bank_transactions
		WHERE transaction_id = $1
	`, id)

	txn, err := scanBankTransactionFrom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Bank transaction with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve bank transaction", err)
	}

	return txn, nil
}

// GetBankTransactionsByBeneficiary retrieves all of a beneficiary's
// transactions for the tenant, oldest first. The ordering drives the FIFO
// consumption bias of the eligibility view: older, partially used transfers
// are exhausted before newer ones.
func (d Datasource) GetBankTransactionsByBeneficiary(ctx context.Context, tenantID, beneficiaryID string) ([]model.BankTransaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT transaction_id, tenant_id, beneficiary_id, total_paid_amount, transaction_code, payment_document_id, payment_date, created_at, meta_data
		FROM bank_transactions
		WHERE tenant_id = $1 AND beneficiary_id = $2
		ORDER BY created_at ASC
	`, tenantID, beneficiaryID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve bank transactions", err)
	}
	defer rows.Close()

	var transactions []model.BankTransaction
	for rows.Next() {
		txn, err := scanBankTransactionFrom(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan bank transaction data", err)
		}
		transactions = append(transactions, *txn)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over bank transactions", err)
	}

	return transactions, nil
}

// TransactionCodeExists checks whether a bank reference code is already
// recorded within the tenant.
func (d Datasource) TransactionCodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM bank_transactions WHERE tenant_id = $1 AND transaction_code = $2)
	`, tenantID, code).Scan(&exists)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check if transaction code exists", err)
	}

	return exists, nil
}

func scanBankTransactionFrom(s rowScanner) (*model.BankTransaction, error) {
	txn := &model.BankTransaction{}
	var documentID sql.NullString
	var metaDataJSON []byte

	err := s.Scan(&txn.TransactionID, &txn.TenantID, &txn.BeneficiaryID, &txn.TotalPaidAmount, &txn.TransactionCode, &documentID, &txn.PaymentDate, &txn.CreatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}

	txn.PaymentDocumentID = documentID.String

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &txn.MetaData); err != nil {
			return nil, err
		}
	}

	return txn, nil
}
