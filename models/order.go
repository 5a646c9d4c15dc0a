package models

import (
	"fmt"
	"time"
)

const (
	OrderStatusPending = "pending"
	OrderStatusCooking = "cooking"
	OrderStatusReady   = "ready"
	OrderStatusServed  = "served"
)

var orderStatusSequence = []string{
	OrderStatusPending,
	OrderStatusCooking,
	OrderStatusReady,
	OrderStatusServed,
}

// OrderStatusRank returns the position of status in the order workflow, or -1
// for an unknown status.
func OrderStatusRank(status string) int {
	for i, s := range orderStatusSequence {
		if s == status {
			return i
		}
	}
	return -1
}

type Order struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	TableID             uint        `gorm:"not null;index" json:"table_id"`
	Table               Table       `gorm:"foreignKey:TableID" json:"table"`
	WaiterID            *uint       `gorm:"index" json:"waiter_id,omitempty"`
	Waiter              *User       `gorm:"foreignKey:WaiterID" json:"waiter,omitempty"`
	Status              string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalAmount         float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Billed              bool        `gorm:"not null;default:false;index" json:"billed"`
	BillID              *uint       `gorm:"index" json:"bill_id,omitempty"`
	AutoStockDeducted   bool        `gorm:"not null;default:false" json:"auto_stock_deducted"`
	ManualStockDeducted bool        `gorm:"not null;default:false" json:"manual_stock_deducted"`
	CookingAt           *time.Time  `json:"cooking_at,omitempty"`
	ReadyAt             *time.Time  `json:"ready_at,omitempty"`
	ServedAt            *time.Time  `json:"served_at,omitempty"`
	OrderItems          []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// ActiveTotal sums the line price of items that were not cancelled.
func (o *Order) ActiveTotal() float64 {
	var total float64
	for _, item := range o.OrderItems {
		if item.Status == OrderItemStatusActive {
			total += item.LinePrice
		}
	}
	return total
}

func (o *Order) Label() string {
	return fmt.Sprintf("Order #%d (table %d)", o.ID, o.TableID)
}
