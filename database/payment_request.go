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

	"github.com/freightpay/freightpay/internal/apierror"
	"github.com/freightpay/freightpay/model"
)

// CreatePaymentRequest inserts a new payment request. Requests are always
// created PENDING; the beneficiary may be assigned later.
func (d Datasource) CreatePaymentRequest(ctx context.Context, request model.PaymentRequest) (model.PaymentRequest, error) {
	metaDataJSON, err := json.Marshal(request.MetaData)
	if err != nil {
		return model.PaymentRequest{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	request.RequestID = model.GenerateUUIDWithSuffix("req")
	request.Status = model.StatusPending
	request.CreatedAt = time.Now()

	var beneficiaryID interface{}
	if request.BeneficiaryID != "" {
		beneficiaryID = request.BeneficiaryID
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO payment_requests (request_id, tenant_id, sales_order_id, vehicle_id, beneficiary_id, transaction_type, requested_amount, status, notes, created_at, meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		request.RequestID, request.TenantID, request.SalesOrderID, request.VehicleID, beneficiaryID, request.TransactionType, request.RequestedAmount, request.Status, request.Notes, request.CreatedAt, metaDataJSON,
	)
	if err != nil {
		return model.PaymentRequest{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create payment request", err)
	}

	return request, nil
}

// GetPaymentRequestByID retrieves a payment request by its unique ID. The
// caller compares the returned tenant against the caller's tenant scope, so
// that a cross-tenant id can be told apart from a missing one.
func (d Datasource) GetPaymentRequestByID(ctx context.Context, id string) (*model.PaymentRequest, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT request_id, tenant_id, sales_order_id, vehicle_id, beneficiary_id, transaction_type, requested_amount, status, notes, created_at, meta_data
		FROM payment_requests
		WHERE request_id = $1
	`, id)

	return scanPaymentRequest(row, id)
}

// GetPaymentRequests retrieves a tenant's payment requests, optionally
// filtered by status, newest first.
func (d Datasource) GetPaymentRequests(ctx context.Context, tenantID, status string, limit, offset int) ([]model.PaymentRequest, error) {
	query := `
		SELECT request_id, tenant_id, sales_order_id, vehicle_id, beneficiary_id, transaction_type, requested_amount, status, notes, created_at, meta_data
		FROM payment_requests
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	if status != "" {
		query += " AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4"
		args = append(args, status, limit, offset)
	} else {
		query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	}

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment requests", err)
	}
	defer rows.Close()

	var requests []model.PaymentRequest
	for rows.Next() {
		request, err := scanPaymentRequestRow(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over payment requests", err)
	}

	return requests, nil
}

// AssignBeneficiary sets the beneficiary on a payment request that is still
// PENDING and unassigned. Both guards live in the WHERE clause so a concurrent
// caller cannot complete or assign the request between the service's check and
// this update.
func (d Datasource) AssignBeneficiary(ctx context.Context, id, beneficiaryID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE payment_requests
		SET beneficiary_id = $2
		WHERE request_id = $1 AND status = $3 AND beneficiary_id IS NULL
	`, id, beneficiaryID, model.StatusPending)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to assign beneficiary", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Pending unassigned payment request with ID '%s' not found", id), nil)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPaymentRequest(row *sql.Row, id string) (*model.PaymentRequest, error) {
	request, err := scanPaymentRequestFrom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Payment request with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment request", err)
	}
	return request, nil
}

func scanPaymentRequestRow(rows *sql.Rows) (*model.PaymentRequest, error) {
	request, err := scanPaymentRequestFrom(rows)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan payment request data", err)
	}
	return request, nil
}

func scanPaymentRequestFrom(s rowScanner) (*model.PaymentRequest, error) {
	request := &model.PaymentRequest{}
	var salesOrderID, vehicleID, beneficiaryID, notes sql.NullString
	var metaDataJSON []byte

	err := s.Scan(&request.RequestID, &request.TenantID, &salesOrderID, &vehicleID, &beneficiaryID, &request.TransactionType, &request.RequestedAmount, &request.Status, &notes, &request.CreatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}

	request.SalesOrderID = salesOrderID.String
	request.VehicleID = vehicleID.String
	request.BeneficiaryID = beneficiaryID.String
	request.Notes = notes.String

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &request.MetaData); err != nil {
			return nil, err
		}
	}

	return request, nil
}
