package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"gorm.io/gorm"
)

func orderRoutes(db *gorm.DB, role string) *gin.Engine {
	oc := controllers.NewOrderController(db, services.NewOrderService(db, services.NewStockService(db)))
	r := newRouter(role, 7)
	r.GET("/orders", oc.GetAllOrders)
	r.GET("/orders/kitchen", oc.GetKitchenOrders)
	r.GET("/orders/:order_id", oc.GetOrderByID)
	r.POST("/orders", oc.CreateOrder)
	r.PUT("/orders/:order_id/status", oc.UpdateOrderStatus)
	r.DELETE("/orders/:order_id/items/:item_id", oc.CancelOrderItem)
	r.DELETE("/orders/:order_id", oc.DeleteOrder)
	return r
}

func TestCreateOrderOccupiesTable(t *testing.T) {
	db := setupTestDB(t)
	s := seedMenu(t, db)
	r := orderRoutes(db, models.RoleWaiter)

	w, response := doJSON(t, r, http.MethodPost, "/orders", map[string]interface{}{
		"table_id": s.table.ID,
		"items": []map[string]interface{}{
			{"menu_id": s.burger.ID, "quantity": 2},
			{"menu_id": s.fries.ID, "quantity": 1, "notes": "no salt"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, response["message"])
	order := dataMap(t, response)
	assert.Equal(t, models.OrderStatusPending, order["status"])
	assert.Equal(t, 250.0, order["total_amount"])
	assert.Equal(t, float64(7), order["waiter_id"])
	assert.Len(t, order["order_items"], 2)

	var table models.Table
	require.NoError(t, db.First(&table, s.table.ID).Error)
	assert.Equal(t, models.TableStatusOccupied, table.Status)

	w, response = doJSON(t, r, http.MethodGet, "/orders/kitchen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, response), 1)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	s := seedMenu(t, db)
	r := orderRoutes(db, models.RoleWaiter)

	w, _ := doJSON(t, r, http.MethodPost, "/orders", map[string]interface{}{"table_id": s.table.ID, "items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/orders", map[string]interface{}{
		"table_id": s.table.ID,
		"items":    []map[string]interface{}{{"menu_id": 999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/orders", map[string]interface{}{
		"table_id": 999,
		"items":    []map[string]interface{}{{"menu_id": s.burger.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWaiterCannotSetKitchenStatuses(t *testing.T) {
	db := setupTestDB(t)
	s := seedMenu(t, db)
	waiter := orderRoutes(db, models.RoleWaiter)
	chef := orderRoutes(db, models.RoleChef)

	_, response := doJSON(t, waiter, http.MethodPost, "/orders", map[string]interface{}{
		"table_id": s.table.ID,
		"items":    []map[string]interface{}{{"menu_id": s.burger.ID, "quantity": 1}},
	})
	id := uint(dataMap(t, response)["id"].(float64))
	path := fmt.Sprintf("/orders/%d/status", id)

	w, response := doJSON(t, waiter, http.MethodPut, path, map[string]string{"status": models.OrderStatusCooking})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, controllers.ErrNoPermission.Error(), response["message"])

	w, response = doJSON(t, chef, http.MethodPut, path, map[string]string{"status": models.OrderStatusCooking})
	require.Equal(t, http.StatusOK, w.Code, response["message"])
	assert.Equal(t, true, dataMap(t, response)["auto_stock_deducted"])

	var beef models.StockItem
	require.NoError(t, db.First(&beef, s.beef.ID).Error)
	assert.InDelta(t, 9.8, beef.Quantity, 0.0001)

	w, _ = doJSON(t, chef, http.MethodPut, path, map[string]string{"status": models.OrderStatusPending})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, chef, http.MethodPut, path, map[string]string{"status": models.OrderStatusReady})
	require.Equal(t, http.StatusOK, w.Code)

	w, response = doJSON(t, waiter, http.MethodPut, path, map[string]string{"status": models.OrderStatusServed})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderStatusServed, dataMap(t, response)["status"])

	var table models.Table
	require.NoError(t, db.First(&table, s.table.ID).Error)
	assert.Equal(t, models.TableStatusWaitingForBill, table.Status)
}

func TestCancelItemAndDeleteOrder(t *testing.T) {
	db := setupTestDB(t)
	s := seedMenu(t, db)
	r := orderRoutes(db, models.RoleCashier)

	_, response := doJSON(t, r, http.MethodPost, "/orders", map[string]interface{}{
		"table_id": s.table.ID,
		"items": []map[string]interface{}{
			{"menu_id": s.burger.ID, "quantity": 1},
			{"menu_id": s.fries.ID, "quantity": 2},
		},
	})
	order := dataMap(t, response)
	id := uint(order["id"].(float64))
	items := order["order_items"].([]interface{})
	friesLine := uint(items[1].(map[string]interface{})["id"].(float64))

	w, response := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/orders/%d/items/%d", id, friesLine), nil)
	require.Equal(t, http.StatusOK, w.Code, response["message"])
	assert.Equal(t, 100.0, dataMap(t, response)["total_amount"])

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/orders/%d/items/%d", id, friesLine), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var table models.Table
	require.NoError(t, db.First(&table, s.table.ID).Error)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
}
