package models

import "time"

const (
	OrderItemStatusActive    = "active"
	OrderItemStatusCancelled = "cancelled"
)

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order         Order            `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID        uint             `gorm:"not null" json:"menu_id"`
	Menu          Menu             `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`
	Quantity      int              `gorm:"not null" json:"quantity"`
	VariationID   *uint            `json:"variation_id,omitempty"`
	VariationName string           `gorm:"type:varchar(100)" json:"variation_name,omitempty"`
	AddOns        []OrderItemAddOn `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"add_ons"`
	UnitPrice     float64          `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	LinePrice     float64          `gorm:"type:decimal(10,2);not null" json:"line_price"`
	Notes         string           `gorm:"type:text" json:"notes"`
	Status        string           `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// OrderItemAddOn snapshots the add-on name and price at order time.
type OrderItemAddOn struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderItemID uint    `gorm:"not null;index" json:"order_item_id"`
	AddOnID     uint    `gorm:"not null" json:"add_on_id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}
