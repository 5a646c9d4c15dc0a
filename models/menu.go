package models

import "time"

type Menu struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CategoryID  uint             `gorm:"not null;index" json:"category_id"`
	Category    MenuCategory     `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64          `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string           `gorm:"type:text" json:"description"`
	Available   bool             `gorm:"not null;default:true" json:"available"`
	Variations  []MenuVariation  `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"variations"`
	AddOns      []MenuAddOn      `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"add_ons"`
	Ingredients []MenuIngredient `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"ingredients"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// MenuVariation replaces the base price of a menu when chosen (e.g. a large portion).
type MenuVariation struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	MenuID uint    `gorm:"not null;index" json:"menu_id"`
	Name   string  `gorm:"type:varchar(100);not null" json:"name"`
	Price  float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}

// MenuAddOn is charged per unit on top of the base or variation price.
type MenuAddOn struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	MenuID uint    `gorm:"not null;index" json:"menu_id"`
	Name   string  `gorm:"type:varchar(100);not null" json:"name"`
	Price  float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}

// MenuIngredient is the stock consumed by one unit of a menu.
type MenuIngredient struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MenuID      uint      `gorm:"not null;uniqueIndex:idx_menu_stock" json:"menu_id"`
	StockItemID uint      `gorm:"not null;uniqueIndex:idx_menu_stock" json:"stock_item_id"`
	StockItem   StockItem `gorm:"foreignKey:StockItemID;constraint:OnDelete:RESTRICT" json:"stock_item"`
	Quantity    float64   `gorm:"type:decimal(10,3);not null" json:"quantity"`
}
