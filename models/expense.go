package models

import "time"

type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string    `gorm:"type:text" json:"description"`
	SpentAt     time.Time `gorm:"not null;index" json:"spent_at"`
	CreatedBy   *uint     `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Budget caps spending of one category in one month (Month is "2006-01").
type Budget struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Category  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_budget_month" json:"category"`
	Month     string    `gorm:"type:varchar(7);not null;uniqueIndex:idx_budget_month" json:"month"`
	Amount    float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
