package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"gorm.io/gorm"
)

func customerRoutes(db *gorm.DB) *gin.Engine {
	cc := controllers.NewCustomerController(db, services.NewCreditService(db))
	r := newRouter(models.RoleManager, 2)
	r.GET("/customers", cc.GetAllCustomers)
	r.POST("/customers", cc.CreateCustomer)
	r.GET("/customers/:customer_id", cc.GetCustomerByID)
	r.PUT("/customers/:customer_id", cc.UpdateCustomer)
	r.DELETE("/customers/:customer_id", cc.DeleteCustomer)
	r.POST("/customers/:customer_id/payments", cc.RecordPayment)
	r.POST("/customers/:customer_id/credits", cc.GrantCredit)
	r.GET("/customers/:customer_id/ledger", cc.GetLedger)
	return r
}

func TestCustomerCreditFlow(t *testing.T) {
	db := setupTestDB(t)
	r := customerRoutes(db)

	w, response := doJSON(t, r, http.MethodPost, "/customers", map[string]string{"name": "Budi", "phone": "0811"})
	require.Equal(t, http.StatusCreated, w.Code)
	customer := dataMap(t, response)
	assert.Equal(t, 0.0, customer["credit_balance"])
	id := uint(customer["id"].(float64))
	base := fmt.Sprintf("/customers/%d", id)

	w, _ = doJSON(t, r, http.MethodPost, "/customers", map[string]string{"name": "Other", "phone": "0811"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = doJSON(t, r, http.MethodPost, base+"/credits", map[string]interface{}{"amount": 150, "note": "catering"})
	require.Equal(t, http.StatusOK, w.Code, response["message"])
	assert.Equal(t, 150.0, dataMap(t, response)["customer"].(map[string]interface{})["credit_balance"])

	w, response = doJSON(t, r, http.MethodPost, base+"/payments", map[string]interface{}{"amount": 200})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, response["message"], "exceeds credit balance")

	w, _ = doJSON(t, r, http.MethodPost, base+"/payments", map[string]interface{}{"amount": 10, "method": "credit"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = doJSON(t, r, http.MethodPost, base+"/payments", map[string]interface{}{"amount": 50})
	require.Equal(t, http.StatusOK, w.Code, response["message"])
	data := dataMap(t, response)
	assert.Equal(t, 100.0, data["customer"].(map[string]interface{})["credit_balance"])
	entry := data["transaction"].(map[string]interface{})
	assert.Equal(t, models.CreditTxnPayment, entry["type"])
	assert.Equal(t, models.PaymentMethodCash, entry["method"])
	assert.Equal(t, 100.0, entry["balance_after"])

	w, response = doJSON(t, r, http.MethodGet, base+"/ledger", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := dataList(t, response)
	require.Len(t, ledger, 2)
	assert.Equal(t, models.CreditTxnPayment, ledger[0].(map[string]interface{})["type"])

	w, _ = doJSON(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = doJSON(t, r, http.MethodPut, base, map[string]string{"status": models.CustomerStatusInactive})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.CustomerStatusInactive, dataMap(t, response)["status"])

	w, _ = doJSON(t, r, http.MethodPost, base+"/credits", map[string]interface{}{"amount": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/customers/999/ledger", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCustomerWithoutHistory(t *testing.T) {
	db := setupTestDB(t)
	r := customerRoutes(db)

	_, response := doJSON(t, r, http.MethodPost, "/customers", map[string]string{"name": "Sari", "phone": "0812"})
	id := uint(dataMap(t, response)["id"].(float64))

	w, response := doJSON(t, r, http.MethodGet, "/customers?search=sar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, response), 1)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/customers/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/customers/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
