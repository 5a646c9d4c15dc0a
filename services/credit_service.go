package services

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type CreditService struct {
	DB *gorm.DB
}

func NewCreditService(db *gorm.DB) *CreditService {
	return &CreditService{DB: db}
}

// apply moves a customer's balance inside tx and appends the ledger entry.
// Credits raise the balance; payments lower it and never take it below zero.
func (s *CreditService) apply(tx *gorm.DB, customerID uint, amount float64, txnType, method, note string, billID, userID *uint) (*models.Customer, *models.CreditTransaction, error) {
	amt := dec(amount).Round(2)
	if !amt.IsPositive() {
		return nil, nil, validationf("amount must be greater than 0")
	}
	value := money(amt)

	var customer models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		return nil, nil, lookupErr(err, "customer", customerID)
	}

	balance := dec(customer.CreditBalance).Round(2)
	var next decimal.Decimal
	switch txnType {
	case models.CreditTxnCredit:
		next = balance.Add(amt)
	case models.CreditTxnPayment:
		if amt.GreaterThan(balance) {
			return nil, nil, validationf("payment %s exceeds credit balance %s",
				amt.StringFixed(2), balance.StringFixed(2))
		}
		next = balance.Sub(amt)
	default:
		return nil, nil, validationf("unknown credit transaction type %q", txnType)
	}

	// The write only lands on the balance that was read.
	res := tx.Model(&models.Customer{}).
		Where("id = ? AND credit_balance = ?", customerID, customer.CreditBalance).
		Update("credit_balance", money(next))
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil, validationf("credit balance of %s was changed by another request, retry", customer.Name)
	}
	customer.CreditBalance = money(next)

	entry := models.CreditTransaction{
		CustomerID:   customerID,
		Type:         txnType,
		Amount:       value,
		BalanceAfter: money(dec(customer.CreditBalance)),
		BillID:       billID,
		Method:       method,
		Note:         note,
		CreatedBy:    userID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, nil, err
	}
	return &customer, &entry, nil
}

// RecordPayment settles part or all of a customer's outstanding credit.
func (s *CreditService) RecordPayment(customerID uint, amount float64, method, note string, userID *uint) (*models.Customer, *models.CreditTransaction, error) {
	if method == models.PaymentMethodCredit {
		return nil, nil, validationf("credit cannot be paid with credit")
	}
	if method != "" && !models.IsValidPaymentMethod(method) {
		return nil, nil, validationf("unknown payment method %q", method)
	}

	var customer *models.Customer
	var entry *models.CreditTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		customer, entry, err = s.apply(tx, customerID, amount, models.CreditTxnPayment, method, note, nil, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	utils.InfoLogger.Printf("Customer %d paid %.2f, balance now %.2f", customer.ID, entry.Amount, customer.CreditBalance)
	return customer, entry, nil
}

// GrantCredit records credit extended to a customer outside of a bill.
func (s *CreditService) GrantCredit(customerID uint, amount float64, note string, userID *uint) (*models.Customer, *models.CreditTransaction, error) {
	var customer *models.Customer
	var entry *models.CreditTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, customerID).Error; err != nil {
			return lookupErr(err, "customer", customerID)
		}
		if c.Status != models.CustomerStatusActive {
			return validationf("customer %s is not active", c.Name)
		}
		var err error
		customer, entry, err = s.apply(tx, customerID, amount, models.CreditTxnCredit, "", note, nil, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	utils.InfoLogger.Printf("Customer %d granted %.2f credit, balance now %.2f", customer.ID, entry.Amount, customer.CreditBalance)
	return customer, entry, nil
}

// Ledger lists a customer's credit transactions, newest first.
func (s *CreditService) Ledger(customerID uint) ([]models.CreditTransaction, error) {
	var customer models.Customer
	if err := s.DB.First(&customer, customerID).Error; err != nil {
		return nil, lookupErr(err, "customer", customerID)
	}
	var entries []models.CreditTransaction
	err := s.DB.Where("customer_id = ?", customerID).Order("id desc").Find(&entries).Error
	return entries, err
}
