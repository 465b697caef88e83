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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/freightpay/freightpay/api/model"
)

// CreateBeneficiary registers a new payee for the tenant.
func (a Api) CreateBeneficiary(c *gin.Context) {
	var newBeneficiary model2.CreateBeneficiary
	if err := c.ShouldBindJSON(&newBeneficiary); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newBeneficiary.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.engine.CreateBeneficiary(c.Request.Context(), newBeneficiary.ToBeneficiary(tenantID(c)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetBeneficiary retrieves a single beneficiary.
func (a Api) GetBeneficiary(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /beneficiaries/:id"})
		return
	}

	resp, err := a.engine.GetBeneficiary(c.Request.Context(), tenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
