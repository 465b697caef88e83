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

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateUUIDWithSuffix generates a UUID prefixed with a module name.
// Entity ids carry their kind as a prefix (e.g. "req_", "btx_") so that logs
// and support tickets are unambiguous about what an id refers to.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// PaymentRequest statuses. PENDING is the initial state; COMPLETED is terminal
// and is only ever set by the allocation engine.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

// Transaction types a payment request can arise from.
const (
	TypeAdvanceShipping    = "ADVANCE_SHIPPING"
	TypeBalanceShipping    = "BALANCE_SHIPPING"
	TypeFullShipping       = "FULL_SHIPPING"
	TypePointToPoint       = "POINT_TO_POINT"
	TypeUnloadingCharge    = "UNLOADING_CHARGE"
	TypeUnloadingDetention = "UNLOADING_DETENTION"
	TypeMisc               = "MISC"
)

var transactionTypes = map[string]bool{
	TypeAdvanceShipping:    true,
	TypeBalanceShipping:    true,
	TypeFullShipping:       true,
	TypePointToPoint:       true,
	TypeUnloadingCharge:    true,
	TypeUnloadingDetention: true,
	TypeMisc:               true,
}

// IsValidTransactionType reports whether t is one of the known payment request types.
func IsValidTransactionType(t string) bool {
	return transactionTypes[t]
}

// Beneficiary is the payee identity a bank transfer is made out to. It is an
// immutable reference for the allocation engine; the beneficiary-management
// workflow owns its lifecycle.
type Beneficiary struct {
	ID            int64                  `json:"-"`
	BeneficiaryID string                 `json:"beneficiary_id"`
	TenantID      string                 `json:"tenant_id"`
	Name          string                 `json:"name"`
	BankName      string                 `json:"bank_name"`
	AccountNumber string                 `json:"account_number"`
	IfscCode      string                 `json:"ifsc_code"`
	PhoneNumber   string                 `json:"phone_number"`
	CreatedAt     time.Time              `json:"created_at"`
	MetaData      map[string]interface{} `json:"meta_data,omitempty"`
}

// PaymentRequest is an obligation to pay a beneficiary a requested amount for
// a specific reason (vehicle trip milestone, unloading charge, etc.).
// BeneficiaryID is empty until a beneficiary has been assigned; no allocation
// may target the request before that.
type PaymentRequest struct {
	ID              int64                  `json:"-"`
	RequestID       string                 `json:"request_id"`
	TenantID        string                 `json:"tenant_id"`
	SalesOrderID    string                 `json:"sales_order_id,omitempty"`
	VehicleID       string                 `json:"vehicle_id,omitempty"`
	BeneficiaryID   string                 `json:"beneficiary_id,omitempty"`
	TransactionType string                 `json:"transaction_type"`
	RequestedAmount decimal.Decimal        `json:"requested_amount"`
	Status          string                 `json:"status"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	MetaData        map[string]interface{} `json:"meta_data,omitempty"`
}

// BankTransaction is one recorded real-world bank transfer to a beneficiary.
// TotalPaidAmount is immutable after creation; a wrong amount is corrected by
// recording a new transaction, never by mutating this one. TransactionCode is
// the external bank reference and is unique per tenant.
type BankTransaction struct {
	ID                int64                  `json:"-"`
	TransactionID     string                 `json:"transaction_id"`
	TenantID          string                 `json:"tenant_id"`
	BeneficiaryID     string                 `json:"beneficiary_id"`
	TotalPaidAmount   decimal.Decimal        `json:"total_paid_amount"`
	TransactionCode   string                 `json:"transaction_code"`
	PaymentDocumentID string                 `json:"payment_document_id,omitempty"`
	PaymentDate       time.Time              `json:"payment_date"`
	CreatedAt         time.Time              `json:"created_at"`
	MetaData          map[string]interface{} `json:"meta_data,omitempty"`
}

// PaymentAllocation assigns part of a bank transaction's amount to satisfy
// part of a payment request. Rows are write-once; there is no update or
// reversal in the base protocol.
type PaymentAllocation struct {
	ID              int64           `json:"-"`
	AllocationID    string          `json:"allocation_id"`
	TenantID        string          `json:"tenant_id"`
	RequestID       string          `json:"request_id"`
	TransactionID   string          `json:"transaction_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AllocationEntry is one caller-supplied line of an explicit linking request:
// draw AllocatedAmount from the given bank transaction.
type AllocationEntry struct {
	TransactionID   string          `json:"transaction_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// EligibleTransaction is a bank transaction enriched with its computed
// consumption state. It is a read-time view, never persisted.
type EligibleTransaction struct {
	BankTransaction
	AmountApplied    decimal.Decimal `json:"amount_applied"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// Validate checks the allocation row itself, independent of ledger state.
func (a *PaymentAllocation) Validate() error {
	if a.RequestID == "" || a.TransactionID == "" {
		return errors.New("allocation must reference a payment request and a bank transaction")
	}
	if !a.AllocatedAmount.IsPositive() {
		return errors.New("allocated amount must be positive")
	}
	return nil
}
