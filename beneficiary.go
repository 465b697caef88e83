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

	"github.com/freightpay/freightpay/internal/apierror"
	"github.com/freightpay/freightpay/model"
)

// CreateBeneficiary registers a new payee for the tenant.
func (l *Freightpay) CreateBeneficiary(ctx context.Context, beneficiary model.Beneficiary) (model.Beneficiary, error) {
	if beneficiary.Name == "" {
		return model.Beneficiary{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Beneficiary name is required", nil)
	}
	if beneficiary.AccountNumber == "" {
		return model.Beneficiary{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Beneficiary account number is required", nil)
	}
	return l.datasource.CreateBeneficiary(ctx, beneficiary)
}

// GetBeneficiary retrieves a beneficiary within the caller's tenant scope.
func (l *Freightpay) GetBeneficiary(ctx context.Context, tenantID, beneficiaryID string) (*model.Beneficiary, error) {
	beneficiary, err := l.datasource.GetBeneficiaryByID(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	if beneficiary.TenantID != tenantID {
		return nil, apierror.NewAPIError(apierror.ErrTenantMismatch, fmt.Sprintf("Beneficiary '%s' does not belong to the caller's tenant", beneficiaryID), nil)
	}
	return beneficiary, nil
}
