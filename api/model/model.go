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
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/freightpay/freightpay/model"
)

// paymentDateLayout is the wire format for payment_date.
const paymentDateLayout = "2006-01-02"

// CreateBeneficiary is the request body for registering a payee.
type CreateBeneficiary struct {
	Name          string                 `json:"name"`
	BankName      string                 `json:"bank_name"`
	AccountNumber string                 `json:"account_number"`
	IfscCode      string                 `json:"ifsc_code"`
	PhoneNumber   string                 `json:"phone_number"`
	MetaData      map[string]interface{} `json:"meta_data"`
}

func (c *CreateBeneficiary) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.AccountNumber, validation.Required),
	)
}

func (c *CreateBeneficiary) ToBeneficiary(tenantID string) model.Beneficiary {
	return model.Beneficiary{
		TenantID:      tenantID,
		Name:          c.Name,
		BankName:      c.BankName,
		AccountNumber: c.AccountNumber,
		IfscCode:      c.IfscCode,
		PhoneNumber:   c.PhoneNumber,
		MetaData:      c.MetaData,
	}
}

// CreatePaymentRequest is the request body for recording a payment obligation.
type CreatePaymentRequest struct {
	SalesOrderID    string                 `json:"sales_order_id"`
	VehicleID       string                 `json:"vehicle_id"`
	BeneficiaryID   string                 `json:"beneficiary_id"`
	TransactionType string                 `json:"transaction_type"`
	RequestedAmount decimal.Decimal        `json:"requested_amount"`
	Notes           string                 `json:"notes"`
	MetaData        map[string]interface{} `json:"meta_data"`
}

func (c *CreatePaymentRequest) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TransactionType, validation.Required),
		validation.Field(&c.RequestedAmount, validation.Required, validation.By(positiveAmount)),
	)
}

func (c *CreatePaymentRequest) ToPaymentRequest(tenantID string) model.PaymentRequest {
	return model.PaymentRequest{
		TenantID:        tenantID,
		SalesOrderID:    c.SalesOrderID,
		VehicleID:       c.VehicleID,
		BeneficiaryID:   c.BeneficiaryID,
		TransactionType: c.TransactionType,
		RequestedAmount: c.RequestedAmount,
		Notes:           c.Notes,
		MetaData:        c.MetaData,
	}
}

// RecordBankTransaction is the request body for recording a bank transfer.
type RecordBankTransaction struct {
	BeneficiaryID     string                 `json:"beneficiary_id"`
	TotalPaidAmount   decimal.Decimal        `json:"total_paid_amount"`
	TransactionCode   string                 `json:"transaction_code"`
	PaymentDocumentID string                 `json:"payment_document_id"`
	PaymentDate       string                 `json:"payment_date"`
	MetaData          map[string]interface{} `json:"meta_data"`
}

func (r *RecordBankTransaction) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BeneficiaryID, validation.Required),
		validation.Field(&r.TransactionCode, validation.Required),
		validation.Field(&r.TotalPaidAmount, validation.Required, validation.By(positiveAmount)),
		validation.Field(&r.PaymentDate, validation.Date(paymentDateLayout)),
	)
}

// ToBankTransaction converts the body. Validate must have passed first; it
// guarantees payment_date, when present, parses under paymentDateLayout.
func (r *RecordBankTransaction) ToBankTransaction(tenantID string) model.BankTransaction {
	txn := model.BankTransaction{
		TenantID:          tenantID,
		BeneficiaryID:     r.BeneficiaryID,
		TotalPaidAmount:   r.TotalPaidAmount,
		TransactionCode:   r.TransactionCode,
		PaymentDocumentID: r.PaymentDocumentID,
		MetaData:          r.MetaData,
	}
	if r.PaymentDate != "" {
		txn.PaymentDate, _ = time.Parse(paymentDateLayout, r.PaymentDate)
	}
	return txn
}

// AssignBeneficiary is the request body for assigning a payee to a pending
// payment request.
type AssignBeneficiary struct {
	BeneficiaryID string `json:"beneficiary_id"`
}

func (a *AssignBeneficiary) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.BeneficiaryID, validation.Required),
	)
}

// LinkTransactions is the request body for the explicit allocation protocol.
type LinkTransactions struct {
	Allocations []model.AllocationEntry `json:"allocations"`
}

func (l *LinkTransactions) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Allocations, validation.Required),
	)
}

// CompleteRequest is the request body for the consumption protocol.
type CompleteRequest struct {
	TransactionIDs []string `json:"transaction_ids"`
}

func (c *CompleteRequest) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TransactionIDs, validation.Required),
	)
}

func positiveAmount(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok || !amount.IsPositive() {
		return validation.NewError("validation_positive_amount", "must be a positive amount")
	}
	return nil
}
