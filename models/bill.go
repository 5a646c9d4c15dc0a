package models

import "time"

const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodOnline = "online"
	PaymentMethodCredit = "credit"
)

type Bill struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	BillNumber     string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"bill_number"`
	TableID        uint          `gorm:"not null;index" json:"table_id"`
	Table          Table         `gorm:"foreignKey:TableID" json:"table"`
	Orders         []Order       `gorm:"foreignKey:BillID" json:"orders,omitempty"`
	Subtotal       float64       `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate        float64       `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	Tax            float64       `gorm:"type:decimal(12,2);not null" json:"tax"`
	Discount       float64       `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total          float64       `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethods []BillPayment `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"payment_methods"`
	CustomerID     *uint         `gorm:"index" json:"customer_id,omitempty"`
	Customer       *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CreditAmount   float64       `gorm:"type:decimal(12,2);not null;default:0" json:"credit_amount"`
	CashierID      *uint         `json:"cashier_id,omitempty"`
	Note           string        `gorm:"type:text" json:"note"`
	PrintCount     int           `gorm:"not null;default:0" json:"print_count"`
	LastPrintedAt  *time.Time    `json:"last_printed_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type BillPayment struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	BillID uint    `gorm:"not null;index" json:"bill_id"`
	Type   string  `gorm:"type:varchar(20);not null" json:"type"`
	Amount float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
}

func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline, PaymentMethodCredit:
		return true
	}
	return false
}
