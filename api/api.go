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

	freightpay "github.com/freightpay/freightpay"
	"github.com/freightpay/freightpay/internal/apierror"
)

type Api struct {
	engine *freightpay.Freightpay
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/beneficiaries", a.CreateBeneficiary)
	router.GET("/beneficiaries/:id", a.GetBeneficiary)

	router.POST("/payment-requests", a.CreatePaymentRequest)
	router.GET("/payment-requests", a.ListPaymentRequests)
	router.GET("/payment-requests/:id", a.GetPaymentRequest)
	router.POST("/payment-requests/:id/assign-beneficiary", a.AssignBeneficiary)
	router.GET("/payment-requests/:id/eligible-transactions", a.ListEligibleTransactions)
	router.GET("/payment-requests/:id/allocations", a.GetAllocationsForRequest)
	router.POST("/payment-requests/:id/allocations", a.LinkTransactions)
	router.POST("/payment-requests/:id/complete", a.CompleteRequest)

	router.POST("/bank-transactions", a.RecordBankTransaction)
	router.GET("/bank-transactions/:id", a.GetBankTransaction)
	router.GET("/bank-transactions/:id/allocations", a.GetAllocationsForTransaction)

	return a.router
}

func NewAPI(engine *freightpay.Freightpay) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.Use(tenantMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{engine: engine, router: r}
}

// tenantMiddleware resolves the caller's tenant scope from the X-Tenant-Id
// header. Identity and role resolution happen upstream of this service; by
// the time a request reaches the engine the header is trusted.
func tenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/" {
			c.Next()
			return
		}
		tenantID := c.GetHeader("X-Tenant-Id")
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Tenant-Id header is required"})
			return
		}
		c.Set("tenant_id", tenantID)
		c.Next()
	}
}

func tenantID(c *gin.Context) string {
	return c.GetString("tenant_id")
}

// respondError maps engine errors onto HTTP statuses, keeping the structured
// code and details so the UI can render a precise message.
func respondError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	if apiErr, ok := err.(apierror.APIError); ok {
		c.JSON(status, gin.H{"error": apiErr.Message, "code": apiErr.Code, "details": apiErr.Details})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
