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
	"fmt"

	"github.com/shopspring/decimal"
)

// InvariantError reports that the persisted ledger state already violates a
// core invariant (a transaction consumed past its total, or a request
// satisfied past its requested amount). It should never occur in correct
// operation; callers treat it as a fatal, alerting condition rather than a
// user-correctable validation failure.
type InvariantError struct {
	Entity string
	ID     string
	Limit  decimal.Decimal
	Total  decimal.Decimal
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("ledger invariant violated: %s %s has %s allocated against a limit of %s",
		e.Entity, e.ID, e.Total.String(), e.Limit.String())
}

// AmountApplied sums the allocations drawn from this transaction. Allocations
// referencing other transactions are ignored, so callers can pass an
// unfiltered set.
func (t *BankTransaction) AmountApplied(allocations []PaymentAllocation) decimal.Decimal {
	total := decimal.Zero
	for i := range allocations {
		if allocations[i].TransactionID == t.TransactionID {
			total = total.Add(allocations[i].AllocatedAmount)
		}
	}
	return total
}

// RemainingBalance computes how much of the transaction's total is still
// unconsumed. A negative remainder means the ledger is already corrupt and is
// surfaced as an InvariantError instead of being clamped, since clamping would
// hide the bug.
func (t *BankTransaction) RemainingBalance(allocations []PaymentAllocation) (decimal.Decimal, error) {
	applied := t.AmountApplied(allocations)
	remaining := t.TotalPaidAmount.Sub(applied)
	if remaining.IsNegative() {
		return decimal.Zero, &InvariantError{
			Entity: "bank transaction",
			ID:     t.TransactionID,
			Limit:  t.TotalPaidAmount,
			Total:  applied,
		}
	}
	return remaining, nil
}

// AmountAllocated sums the allocations applied toward this request.
func (r *PaymentRequest) AmountAllocated(allocations []PaymentAllocation) decimal.Decimal {
	total := decimal.Zero
	for i := range allocations {
		if allocations[i].RequestID == r.RequestID {
			total = total.Add(allocations[i].AllocatedAmount)
		}
	}
	return total
}

// OutstandingAmount computes how much of the requested amount is still
// unsatisfied. As with RemainingBalance, an over-satisfied request is an
// InvariantError.
func (r *PaymentRequest) OutstandingAmount(allocations []PaymentAllocation) (decimal.Decimal, error) {
	allocated := r.AmountAllocated(allocations)
	outstanding := r.RequestedAmount.Sub(allocated)
	if outstanding.IsNegative() {
		return decimal.Zero, &InvariantError{
			Entity: "payment request",
			ID:     r.RequestID,
			Limit:  r.RequestedAmount,
			Total:  allocated,
		}
	}
	return outstanding, nil
}

// ToEligible builds the read-time view of the transaction from its current
// allocation set.
func (t *BankTransaction) ToEligible(allocations []PaymentAllocation) (*EligibleTransaction, error) {
	remaining, err := t.RemainingBalance(allocations)
	if err != nil {
		return nil, err
	}
	return &EligibleTransaction{
		BankTransaction:  *t,
		AmountApplied:    t.AmountApplied(allocations),
		RemainingBalance: remaining,
	}, nil
}
