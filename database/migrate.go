package database

import (
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

// AllModels is the schema managed by AutoMigrate, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Table{},
		&models.MenuCategory{},
		&models.StockItem{},
		&models.Menu{},
		&models.MenuVariation{},
		&models.MenuAddOn{},
		&models.MenuIngredient{},
		&models.Customer{},
		&models.Bill{},
		&models.BillPayment{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemAddOn{},
		&models.CreditTransaction{},
		&models.StockMovement{},
		&models.Expense{},
		&models.Budget{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
