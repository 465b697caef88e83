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
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freightpay/freightpay/config"
	"github.com/freightpay/freightpay/database"
	"github.com/freightpay/freightpay/internal/apierror"
	"github.com/freightpay/freightpay/model"
)

// Freightpay is the payment reconciliation engine. It owns the
// payment_allocations ledger and the status transition on payment requests;
// everything else it reads belongs to the upstream intake workflows.
type Freightpay struct {
	datasource database.IDataSource
	redis      redis.UniversalClient
	lockTTL    time.Duration
	lockWait   time.Duration
}

// NewFreightpay initializes the engine from the loaded configuration.
func NewFreightpay(db database.IDataSource) (*Freightpay, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	opts, err := redis.ParseURL(configuration.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("parsing redis dns: %w", err)
	}

	return &Freightpay{
		datasource: db,
		redis:      redis.NewClient(opts),
		lockTTL:    time.Duration(configuration.Allocation.LockTTLSec) * time.Second,
		lockWait:   time.Duration(configuration.Allocation.LockWaitSec) * time.Second,
	}, nil
}

// getPaymentRequestScoped fetches a payment request and enforces the caller's
// tenant scope. Cross-tenant access is a security defect, not just a
// correctness one, so it is a distinct failure mode from NotFound.
func (l *Freightpay) getPaymentRequestScoped(ctx context.Context, tenantID, requestID string) (*model.PaymentRequest, error) {
	request, err := l.datasource.GetPaymentRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.TenantID != tenantID {
		return nil, apierror.NewAPIError(apierror.ErrTenantMismatch, fmt.Sprintf("Payment request '%s' does not belong to the caller's tenant", requestID), nil)
	}
	return request, nil
}
