package models

import "time"

const (
	TableStatusAvailable      = "available"
	TableStatusOccupied       = "occupied"
	TableStatusWaitingForBill = "waiting_for_bill"
)

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Capacity  int       `gorm:"not null;default:4" json:"capacity"`
	Status    string    `gorm:"type:varchar(30);not null;default:'available'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
