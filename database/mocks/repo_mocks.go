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
package mocks

import (
	"context"

	"github.com/freightpay/freightpay/database"
	"github.com/freightpay/freightpay/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface.
// Calls that open a reconciliation transaction are handed the Txn mock.
type MockDataSource struct {
	mock.Mock
	Txn *MockReconciliationTxn
}

func NewMockDataSource() *MockDataSource {
	return &MockDataSource{Txn: &MockReconciliationTxn{}}
}

// Beneficiary methods

func (m *MockDataSource) CreateBeneficiary(ctx context.Context, beneficiary model.Beneficiary) (model.Beneficiary, error) {
	args := m.Called(ctx, beneficiary)
	return args.Get(0).(model.Beneficiary), args.Error(1)
}

func (m *MockDataSource) GetBeneficiaryByID(ctx context.Context, id string) (*model.Beneficiary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Beneficiary), args.Error(1)
}

// Payment request methods

func (m *MockDataSource) CreatePaymentRequest(ctx context.Context, request model.PaymentRequest) (model.PaymentRequest, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(model.PaymentRequest), args.Error(1)
}

func (m *MockDataSource) GetPaymentRequestByID(ctx context.Context, id string) (*model.PaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRequest), args.Error(1)
}

func (m *MockDataSource) GetPaymentRequests(ctx context.Context, tenantID, status string, limit, offset int) ([]model.PaymentRequest, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentRequest), args.Error(1)
}

func (m *MockDataSource) AssignBeneficiary(ctx context.Context, id, beneficiaryID string) error {
	args := m.Called(ctx, id, beneficiaryID)
	return args.Error(0)
}

// Bank transaction methods

func (m *MockDataSource) RecordBankTransaction(ctx context.Context, txn model.BankTransaction) (model.BankTransaction, error) {
	args := m.Called(ctx, txn)
	return args.Get(0).(model.BankTransaction), args.Error(1)
}

func (m *MockDataSource) GetBankTransactionByID(ctx context.Context, id string) (*model.BankTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BankTransaction), args.Error(1)
}

func (m *MockDataSource) GetBankTransactionsByBeneficiary(ctx context.Context, tenantID, beneficiaryID string) ([]model.BankTransaction, error) {
	args := m.Called(ctx, tenantID, beneficiaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BankTransaction), args.Error(1)
}

func (m *MockDataSource) TransactionCodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

// Allocation methods

func (m *MockDataSource) WithReconciliationTxn(ctx context.Context, fn func(ctx context.Context, txn database.ReconciliationTxn) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Txn)
}

func (m *MockDataSource) GetAllocationsForRequest(ctx context.Context, tenantID, requestID string) ([]model.PaymentAllocation, error) {
	args := m.Called(ctx, tenantID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentAllocation), args.Error(1)
}

func (m *MockDataSource) GetAllocationsForTransaction(ctx context.Context, tenantID, transactionID string) ([]model.PaymentAllocation, error) {
	args := m.Called(ctx, tenantID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentAllocation), args.Error(1)
}

func (m *MockDataSource) GetAllocationsByBeneficiary(ctx context.Context, tenantID, beneficiaryID string) ([]model.PaymentAllocation, error) {
	args := m.Called(ctx, tenantID, beneficiaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentAllocation), args.Error(1)
}

// MockReconciliationTxn is a mock implementation of the ReconciliationTxn
// unit-of-work interface.
type MockReconciliationTxn struct {
	mock.Mock
}

func (m *MockReconciliationTxn) GetPaymentRequestForUpdate(ctx context.Context, id string) (*model.PaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRequest), args.Error(1)
}

func (m *MockReconciliationTxn) GetBankTransactionForUpdate(ctx context.Context, id string) (*model.BankTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BankTransaction), args.Error(1)
}

func (m *MockReconciliationTxn) SumAllocationsForRequest(ctx context.Context, requestID string) (decimal.Decimal, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReconciliationTxn) SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReconciliationTxn) RecordAllocation(ctx context.Context, allocation *model.PaymentAllocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

func (m *MockReconciliationTxn) UpdatePaymentRequestStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
