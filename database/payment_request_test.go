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
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightpay/freightpay/internal/apierror"
	"github.com/freightpay/freightpay/model"
)

func newTestDatasource(t *testing.T) (Datasource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return Datasource{Conn: db}, mock
}

var paymentRequestColumns = []string{
	"request_id", "tenant_id", "sales_order_id", "vehicle_id", "beneficiary_id",
	"transaction_type", "requested_amount", "status", "notes", "created_at", "meta_data",
}

func TestCreatePaymentRequest(t *testing.T) {
	ds, mock := newTestDatasource(t)

	request := model.PaymentRequest{
		TenantID:        "tnt_1",
		SalesOrderID:    gofakeit.UUID(),
		VehicleID:       gofakeit.UUID(),
		TransactionType: model.TypeAdvanceShipping,
		RequestedAmount: decimal.NewFromInt(60000),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payment_requests")).
		WithArgs(sqlmock.AnyArg(), request.TenantID, request.SalesOrderID, request.VehicleID, nil, request.TransactionType, request.RequestedAmount, model.StatusPending, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreatePaymentRequest(context.Background(), request)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.RequestID, "req_"))
	assert.Equal(t, model.StatusPending, created.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentRequestByID(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT request_id, tenant_id, sales_order_id, vehicle_id, beneficiary_id, transaction_type, requested_amount, status, notes, created_at, meta_data")).
		WithArgs("req_1").
		WillReturnRows(sqlmock.NewRows(paymentRequestColumns).
			AddRow("req_1", "tnt_1", "so_1", "veh_1", "bnf_1", model.TypeFullShipping, "60000", model.StatusPending, "", time.Now(), `{"source":"import"}`))

	request, err := ds.GetPaymentRequestByID(context.Background(), "req_1")

	require.NoError(t, err)
	assert.Equal(t, "req_1", request.RequestID)
	assert.Equal(t, "bnf_1", request.BeneficiaryID)
	assert.True(t, request.RequestedAmount.Equal(decimal.NewFromInt(60000)))
	assert.Equal(t, "import", request.MetaData["source"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentRequestByID_NotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payment_requests")).
		WithArgs("req_missing").
		WillReturnRows(sqlmock.NewRows(paymentRequestColumns))

	_, err := ds.GetPaymentRequestByID(context.Background(), "req_missing")

	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentRequestByID_NullBeneficiary(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payment_requests")).
		WithArgs("req_1").
		WillReturnRows(sqlmock.NewRows(paymentRequestColumns).
			AddRow("req_1", "tnt_1", nil, nil, nil, model.TypeMisc, "1000", model.StatusPending, nil, time.Now(), nil))

	request, err := ds.GetPaymentRequestByID(context.Background(), "req_1")

	require.NoError(t, err)
	assert.Empty(t, request.BeneficiaryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentRequests_WithStatusFilter(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery(regexp.QuoteMeta("AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("tnt_1", model.StatusPending, 20, 0).
		WillReturnRows(sqlmock.NewRows(paymentRequestColumns).
			AddRow("req_1", "tnt_1", nil, nil, "bnf_1", model.TypeMisc, "1000", model.StatusPending, nil, time.Now(), nil).
			AddRow("req_2", "tnt_1", nil, nil, "bnf_1", model.TypeMisc, "2000", model.StatusPending, nil, time.Now(), nil))

	requests, err := ds.GetPaymentRequests(context.Background(), "tnt_1", model.StatusPending, 20, 0)

	require.NoError(t, err)
	assert.Len(t, requests, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignBeneficiary(t *testing.T) {
	ds, mock := newTestDatasource(t)

	// The update must carry both guards so concurrent callers cannot race
	// the service-level checks.
	mock.ExpectExec(regexp.QuoteMeta("WHERE request_id = $1 AND status = $3 AND beneficiary_id IS NULL")).
		WithArgs("req_1", "bnf_1", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.AssignBeneficiary(context.Background(), "req_1", "bnf_1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignBeneficiary_NotPendingOrAlreadyAssigned(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payment_requests")).
		WithArgs("req_1", "bnf_1", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ds.AssignBeneficiary(context.Background(), "req_1", "bnf_1")

	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
