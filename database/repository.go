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

	"github.com/freightpay/freightpay/model"
	"github.com/shopspring/decimal"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	beneficiary     // Interface for beneficiary-related operations
	paymentRequest  // Interface for payment request operations
	bankTransaction // Interface for bank transaction operations
	allocation      // Interface for allocation ledger operations
}

// beneficiary defines methods for handling beneficiaries.
type beneficiary interface {
	CreateBeneficiary(ctx context.Context, beneficiary model.Beneficiary) (model.Beneficiary, error) // Creates a new beneficiary
	GetBeneficiaryByID(ctx context.Context, id string) (*model.Beneficiary, error)                   // Retrieves a beneficiary by ID
}

// paymentRequest defines methods for handling payment requests.
type paymentRequest interface {
	CreatePaymentRequest(ctx context.Context, request model.PaymentRequest) (model.PaymentRequest, error)    // Creates a new payment request
	GetPaymentRequestByID(ctx context.Context, id string) (*model.PaymentRequest, error)                     // Retrieves a payment request by ID
	GetPaymentRequests(ctx context.Context, tenantID, status string, limit, offset int) ([]model.PaymentRequest, error) // Retrieves payment requests scoped by tenant and status
	AssignBeneficiary(ctx context.Context, id, beneficiaryID string) error                                   // Assigns a beneficiary to a pending payment request
}

// bankTransaction defines methods for handling recorded bank transfers.
type bankTransaction interface {
	RecordBankTransaction(ctx context.Context, txn model.BankTransaction) (model.BankTransaction, error)              // Records a new bank transaction
	GetBankTransactionByID(ctx context.Context, id string) (*model.BankTransaction, error)                            // Retrieves a bank transaction by ID
	GetBankTransactionsByBeneficiary(ctx context.Context, tenantID, beneficiaryID string) ([]model.BankTransaction, error) // Retrieves a beneficiary's transactions, oldest first
	TransactionCodeExists(ctx context.Context, tenantID, code string) (bool, error)                                   // Checks if a bank reference code is already recorded for the tenant
}

// allocation defines methods for the allocation ledger, including the atomic
// unit of work the coordinator runs its write path inside.
type allocation interface {
	WithReconciliationTxn(ctx context.Context, fn func(ctx context.Context, txn ReconciliationTxn) error) error    // Runs fn inside one all-or-nothing transaction
	GetAllocationsForRequest(ctx context.Context, tenantID, requestID string) ([]model.PaymentAllocation, error)   // Retrieves the allocations applied toward a request
	GetAllocationsForTransaction(ctx context.Context, tenantID, transactionID string) ([]model.PaymentAllocation, error) // Retrieves the allocations drawn from a transaction
	GetAllocationsByBeneficiary(ctx context.Context, tenantID, beneficiaryID string) ([]model.PaymentAllocation, error)  // Retrieves all allocations against a beneficiary's transactions
}

// ReconciliationTxn is the unit-of-work boundary of the allocation engine.
// Reads take row-level write locks so that balances re-checked inside the
// transaction cannot be invalidated by a concurrent caller; all writes either
// commit together or roll back together.
type ReconciliationTxn interface {
	GetPaymentRequestForUpdate(ctx context.Context, id string) (*model.PaymentRequest, error)     // Locks and retrieves a payment request row
	GetBankTransactionForUpdate(ctx context.Context, id string) (*model.BankTransaction, error)   // Locks and retrieves a bank transaction row
	SumAllocationsForRequest(ctx context.Context, requestID string) (decimal.Decimal, error)      // Sums allocations applied toward a request
	SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error) // Sums allocations drawn from a transaction
	RecordAllocation(ctx context.Context, allocation *model.PaymentAllocation) error              // Inserts a write-once allocation row
	UpdatePaymentRequestStatus(ctx context.Context, id, status string) error                      // Updates a payment request's status
}
