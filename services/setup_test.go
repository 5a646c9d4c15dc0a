package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db      *gorm.DB
	table   models.Table
	burger  models.Menu
	fries   models.Menu
	beef    models.StockItem
	napkins models.StockItem
	stock   *StockService
	orders  *OrderService
	credit  *CreditService
	billing *BillingService
}

// newFixture seeds a table, a burger (100) using automatic beef and manual
// napkins, and fries (50) without ingredients. Tax is 10%.
func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	f := &fixture{db: db}

	f.table = models.Table{Number: "T1", Capacity: 4, Status: models.TableStatusAvailable}
	require.NoError(t, db.Create(&f.table).Error)

	category := models.MenuCategory{Name: "Mains"}
	require.NoError(t, db.Create(&category).Error)

	f.beef = models.StockItem{Name: "Beef", Unit: "kg", Quantity: 10, Threshold: 1, DeductionType: models.DeductionAutomatic}
	f.napkins = models.StockItem{Name: "Napkins", Unit: "pcs", Quantity: 100, Threshold: 10, DeductionType: models.DeductionManual}
	require.NoError(t, db.Create(&f.beef).Error)
	require.NoError(t, db.Create(&f.napkins).Error)

	f.burger = models.Menu{CategoryID: category.ID, Name: "Burger", Price: 100, Available: true}
	f.fries = models.Menu{CategoryID: category.ID, Name: "Fries", Price: 50, Available: true}
	require.NoError(t, db.Omit("Category").Create(&f.burger).Error)
	require.NoError(t, db.Omit("Category").Create(&f.fries).Error)

	require.NoError(t, db.Omit("StockItem").Create(&models.MenuIngredient{MenuID: f.burger.ID, StockItemID: f.beef.ID, Quantity: 0.2}).Error)
	require.NoError(t, db.Omit("StockItem").Create(&models.MenuIngredient{MenuID: f.burger.ID, StockItemID: f.napkins.ID, Quantity: 2}).Error)

	f.stock = NewStockService(db)
	f.orders = NewOrderService(db, f.stock)
	f.credit = NewCreditService(db)
	f.billing = NewBillingService(db, f.stock, f.credit, 10, 0.01)
	return f
}

// servedOrder places burger + fries on the fixture table and serves it.
func (f *fixture) servedOrder(t *testing.T) *models.Order {
	order, _, err := f.orders.CreateOrder(f.table.ID, nil, []OrderItemInput{
		{MenuID: f.burger.ID, Quantity: 1},
		{MenuID: f.fries.ID, Quantity: 1},
	})
	require.NoError(t, err)
	for _, status := range []string{models.OrderStatusCooking, models.OrderStatusReady, models.OrderStatusServed} {
		_, err := f.orders.UpdateStatus(order.ID, status)
		require.NoError(t, err)
	}
	order, err = f.orders.GetOrder(order.ID)
	require.NoError(t, err)
	return order
}

func (f *fixture) customer(t *testing.T, phone string, balance float64) models.Customer {
	c := models.Customer{Name: "Customer " + phone, Phone: phone, CreditBalance: balance, Status: models.CustomerStatusActive}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) reload(t *testing.T, dest interface{}, id uint) {
	require.NoError(t, f.db.First(dest, id).Error)
}
