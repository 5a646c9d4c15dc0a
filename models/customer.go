package models

import "time"

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"

	CreditTxnCredit  = "credit"
	CreditTxnPayment = "payment"
)

type Customer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone         string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"phone"`
	CreditBalance float64   `gorm:"type:decimal(12,2);not null;default:0" json:"credit_balance"`
	Status        string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreditTransaction is an append-only ledger entry; rows are never updated.
type CreditTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerID   uint      `gorm:"not null;index" json:"customer_id"`
	Type         string    `gorm:"type:varchar(20);not null" json:"type"`
	Amount       float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceAfter float64   `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	BillID       *uint     `gorm:"index" json:"bill_id,omitempty"`
	Method       string    `gorm:"type:varchar(20)" json:"method,omitempty"`
	Note         string    `gorm:"type:text" json:"note"`
	CreatedBy    *uint     `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
