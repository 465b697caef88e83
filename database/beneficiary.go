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

	_ "github.com/lib/pq"
)

// CreateBeneficiary inserts a new beneficiary record into the beneficiaries table.
func (d Datasource) CreateBeneficiary(ctx context.Context, beneficiary model.Beneficiary) (model.Beneficiary, error) {
	metaDataJSON, err := json.Marshal(beneficiary.MetaData)
	if err != nil {
		return model.Beneficiary{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	beneficiary.BeneficiaryID = model.GenerateUUIDWithSuffix("bnf")
	beneficiary.CreatedAt = time.Now()

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO beneficiaries (beneficiary_id, tenant_id, name, bank_name, account_number, ifsc_code, phone_number, created_at, meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		beneficiary.BeneficiaryID, beneficiary.TenantID, beneficiary.Name, beneficiary.BankName, beneficiary.AccountNumber, beneficiary.IfscCode, beneficiary.PhoneNumber, beneficiary.CreatedAt, metaDataJSON,
	)
	if err != nil {
		return model.Beneficiary{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create beneficiary", err)
	}

	return beneficiary, nil
}

// GetBeneficiaryByID retrieves a beneficiary by its unique ID. Tenant
// ownership is checked by the caller against the returned record.
func (d Datasource) GetBeneficiaryByID(ctx context.Context, id string) (*model.Beneficiary, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT beneficiary_id, tenant_id, name, bank_name, account_number, ifsc_code, phone_number, created_at, meta_data
		FROM beneficiaries
		WHERE beneficiary_id = $1
	`, id)

	beneficiary := &model.Beneficiary{}
	var metaDataJSON []byte
	err := row.Scan(&beneficiary.BeneficiaryID, &beneficiary.TenantID, &beneficiary.Name, &beneficiary.BankName, &beneficiary.AccountNumber, &beneficiary.IfscCode, &beneficiary.PhoneNumber, &beneficiary.CreatedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Beneficiary with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve beneficiary", err)
	}

	if len(metaDataJSON) > 0 {
		err = json.Unmarshal(metaDataJSON, &beneficiary.MetaData)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}

	return beneficiary, nil
}
