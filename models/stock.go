package models

import "time"

const (
	DeductionAutomatic = "automatic"
	DeductionManual    = "manual"
)

type StockItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	Unit          string    `gorm:"type:varchar(20);not null" json:"unit"`
	Quantity      float64   `gorm:"type:decimal(12,3);not null;default:0" json:"quantity"`
	Threshold     float64   `gorm:"type:decimal(12,3);not null;default:0" json:"threshold"`
	DeductionType string    `gorm:"type:varchar(20);not null;default:'automatic'" json:"deduction_type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *StockItem) IsLow() bool {
	return s.Quantity <= s.Threshold
}

// StockMovement records every change of StockItem.Quantity.
type StockMovement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StockItemID uint      `gorm:"not null;index" json:"stock_item_id"`
	Change      float64   `gorm:"type:decimal(12,3);not null" json:"change"`
	Reason      string    `gorm:"type:varchar(30);not null" json:"reason"`
	OrderID     *uint     `gorm:"index" json:"order_id,omitempty"`
	BillID      *uint     `gorm:"index" json:"bill_id,omitempty"`
	Note        string    `gorm:"type:text" json:"note"`
	CreatedBy   *uint     `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
