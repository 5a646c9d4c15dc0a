package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/models"
)

func TestRestockRecordsMovement(t *testing.T) {
	f := newFixture(t)

	item, err := f.stock.Restock(f.beef.ID, 2.5, "weekly delivery", nil)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, item.Quantity, 0.0001)

	var movements []models.StockMovement
	require.NoError(t, f.db.Where("stock_item_id = ?", f.beef.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, MovementRestock, movements[0].Reason)
	assert.Equal(t, "weekly delivery", movements[0].Note)

	_, err = f.stock.Restock(f.beef.ID, 0, "", nil)
	assert.True(t, IsValidation(err))
	_, err = f.stock.Restock(999, 1, "", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.napkins).Update("quantity", 10).Error)

	low, err := f.stock.LowStock()
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Napkins", low[0].Name)
}

func TestRequirementsAggregatesByStockItem(t *testing.T) {
	f := newFixture(t)
	items := []models.OrderItem{
		{MenuID: f.burger.ID, Quantity: 2, Status: models.OrderItemStatusActive},
		{MenuID: f.burger.ID, Quantity: 1, Status: models.OrderItemStatusActive},
		{MenuID: f.burger.ID, Quantity: 5, Status: models.OrderItemStatusCancelled},
		{MenuID: f.fries.ID, Quantity: 4, Status: models.OrderItemStatusActive},
	}

	reqs, err := requirements(f.db, items, models.DeductionAutomatic)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, f.beef.ID, reqs[0].item.ID)
	assert.Equal(t, "0.6", reqs[0].quantity.String())

	reqs, err = requirements(f.db, items, models.DeductionManual)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "6", reqs[0].quantity.String())
}

func TestFractionalRestocksCoverExactRequirement(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.beef).Update("quantity", 0).Error)

	_, err := f.stock.Restock(f.beef.ID, 0.7, "", nil)
	require.NoError(t, err)
	item, err := f.stock.Restock(f.beef.ID, 0.1, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.8, item.Quantity)

	order, _, err := f.orders.CreateOrder(f.table.ID, nil, []OrderItemInput{{MenuID: f.burger.ID, Quantity: 4}})
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(order.ID, models.OrderStatusCooking)
	require.NoError(t, err)

	var beef models.StockItem
	f.reload(t, &beef, f.beef.ID)
	assert.Equal(t, 0.0, beef.Quantity)
}

func TestDeductAgainstUnroundedStoredQuantity(t *testing.T) {
	f := newFixture(t)
	a, b := 0.7, 0.1
	require.NoError(t, f.db.Model(&f.beef).Update("quantity", a+b).Error)

	order, _, err := f.orders.CreateOrder(f.table.ID, nil, []OrderItemInput{{MenuID: f.burger.ID, Quantity: 4}})
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(order.ID, models.OrderStatusCooking)
	require.NoError(t, err)

	var beef models.StockItem
	f.reload(t, &beef, f.beef.ID)
	assert.Equal(t, 0.0, beef.Quantity)
}
