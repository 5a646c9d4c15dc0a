package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/realtime"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type CustomerController struct {
	DB     *gorm.DB
	Credit *services.CreditService
}

func NewCustomerController(db *gorm.DB, credit *services.CreditService) *CustomerController {
	return &CustomerController{DB: db, Credit: credit}
}

// GetAllCustomers supports ?status= and ?search= (name or phone)
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	query := cc.DB.Order("name asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		respondDBError(c, "listing customers", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}
	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		respondLookupError(c, "customer", id, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

func (cc *CustomerController) phoneTaken(c *gin.Context, phone string, exceptID uint) bool {
	var existing int64
	if err := cc.DB.Model(&models.Customer{}).Where("phone = ? AND id <> ?", phone, exceptID).Count(&existing).Error; err != nil {
		respondDBError(c, "checking customer phone", err)
		return true
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("phone number is already registered"))
		return true
	}
	return false
}

// CreateCustomer -> balance always starts at zero; credit comes from bills or grants
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if cc.phoneTaken(c, req.Phone, 0) {
		return
	}

	customer := models.Customer{
		Name:   req.Name,
		Phone:  req.Phone,
		Status: models.CustomerStatusActive,
	}
	if err := cc.DB.Create(&customer).Error; err != nil {
		respondDBError(c, "creating customer", err)
		return
	}

	utils.InfoLogger.Printf("Customer created: %s (%s)", customer.Name, customer.Phone)
	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

// UpdateCustomer edits name, phone and status. The balance is not writable.
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}
	var req struct {
		Name   string `json:"name"`
		Phone  string `json:"phone"`
		Status string `json:"status" binding:"omitempty,oneof=active inactive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		respondLookupError(c, "customer", id, err)
		return
	}
	if req.Phone != "" && req.Phone != customer.Phone {
		if cc.phoneTaken(c, req.Phone, id) {
			return
		}
		customer.Phone = req.Phone
	}
	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Status != "" {
		customer.Status = req.Status
	}

	if err := cc.DB.Model(&customer).Updates(map[string]interface{}{
		"name":   customer.Name,
		"phone":  customer.Phone,
		"status": customer.Status,
	}).Error; err != nil {
		respondDBError(c, "updating customer", err)
		return
	}

	realtime.Broadcast(realtime.EventCustomerUpdate, customer)
	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// DeleteCustomer refuses customers who still owe money or have a ledger.
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}
	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		respondLookupError(c, "customer", id, err)
		return
	}
	if customer.CreditBalance > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("customer has an outstanding credit balance"))
		return
	}

	var entries int64
	if err := cc.DB.Model(&models.CreditTransaction{}).Where("customer_id = ?", id).Count(&entries).Error; err != nil {
		respondDBError(c, "counting ledger entries", err)
		return
	}
	if entries > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("customer has credit history, set the status to inactive instead"))
		return
	}

	if err := cc.DB.Delete(&customer).Error; err != nil {
		respondDBError(c, "deleting customer", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"customer_id": id})
}

// RecordPayment -> POST /customers/:customer_id/payments {amount, method, note}
func (cc *CustomerController) RecordPayment(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
		Method string  `json:"method"`
		Note   string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = models.PaymentMethodCash
	}

	customer, entry, err := cc.Credit.RecordPayment(id, req.Amount, method, req.Note, currentUserID(c))
	if err != nil {
		respondServiceError(c, "recording credit payment", err)
		return
	}

	realtime.Broadcast(realtime.EventCustomerUpdate, customer)
	utils.RespondJSON(c, http.StatusOK, "Payment recorded", gin.H{
		"customer":    customer,
		"transaction": entry,
	})
}

// GrantCredit -> POST /customers/:customer_id/credits {amount, note}
func (cc *CustomerController) GrantCredit(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
		Note   string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer, entry, err := cc.Credit.GrantCredit(id, req.Amount, req.Note, currentUserID(c))
	if err != nil {
		respondServiceError(c, "granting credit", err)
		return
	}

	realtime.Broadcast(realtime.EventCustomerUpdate, customer)
	utils.RespondJSON(c, http.StatusOK, "Credit granted", gin.H{
		"customer":    customer,
		"transaction": entry,
	})
}

func (cc *CustomerController) GetLedger(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}
	entries, err := cc.Credit.Ledger(id)
	if err != nil {
		respondServiceError(c, "loading ledger", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Credit ledger", entries)
}
