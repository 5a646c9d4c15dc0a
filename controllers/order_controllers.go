package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/realtime"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

func (oc *OrderController) preloaded() *gorm.DB {
	return oc.DB.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id asc")
	}).Preload("OrderItems.AddOns").
		Preload("OrderItems.Menu").
		Preload("Table")
}

// GetAllOrders -> list orders with items; filters: status, table_id, billed
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	query := oc.preloaded().Order("id desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}
	if billed := c.Query("billed"); billed != "" {
		flag, err := strconv.ParseBool(billed)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("billed must be true or false"))
			return
		}
		query = query.Where("billed = ?", flag)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		respondDBError(c, "listing orders", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Orders.GetOrder(id)
	if err != nil {
		respondServiceError(c, "loading order", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetKitchenOrders -> open orders the kitchen still has to work on, oldest first
func (oc *OrderController) GetKitchenOrders(c *gin.Context) {
	var orders []models.Order
	if err := oc.preloaded().
		Where("billed = ? AND status IN ?", false, []string{models.OrderStatusPending, models.OrderStatusCooking}).
		Order("id asc").
		Find(&orders).Error; err != nil {
		respondDBError(c, "listing kitchen orders", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen orders", orders)
}

// CreateOrder -> POST /orders {table_id, items[]}
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body struct {
		TableID uint                      `json:"table_id" binding:"required"`
		Items   []services.OrderItemInput `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, table, err := oc.Orders.CreateOrder(body.TableID, currentUserID(c), body.Items)
	if err != nil {
		respondServiceError(c, "creating order", err)
		return
	}

	realtime.Broadcast(realtime.EventOrderCreated, order)
	realtime.Broadcast(realtime.EventTableUpdate, gin.H{"table": table, "stats": tableStats(oc.DB)})
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// kitchenStatuses may only be set by kitchen staff (and managers).
var kitchenStatuses = map[string]bool{
	models.OrderStatusCooking: true,
	models.OrderStatusReady:   true,
}

// UpdateOrderStatus -> PUT /orders/:order_id/status {status}
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if role := c.GetString("role"); role == models.RoleWaiter && kitchenStatuses[body.Status] {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	change, err := oc.Orders.UpdateStatus(id, body.Status)
	if err != nil {
		respondServiceError(c, "updating order status", err)
		return
	}

	realtime.Broadcast(realtime.EventOrderUpdate, change.Order)
	if change.Table != nil {
		realtime.Broadcast(realtime.EventTableUpdate, gin.H{"table": change.Table, "stats": tableStats(oc.DB)})
	}
	broadcastLowStock(change.LowStock)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", change.Order)
}

// CancelOrderItem -> DELETE /orders/:order_id/items/:item_id
func (oc *OrderController) CancelOrderItem(c *gin.Context) {
	orderID, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	order, err := oc.Orders.CancelItem(orderID, itemID)
	if err != nil {
		respondServiceError(c, "cancelling order item", err)
		return
	}
	realtime.Broadcast(realtime.EventOrderUpdate, order)
	utils.RespondJSON(c, http.StatusOK, "Order item cancelled", order)
}

// DeleteOrder -> only pending, unbilled orders
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	table, err := oc.Orders.DeleteOrder(id)
	if err != nil {
		respondServiceError(c, "deleting order", err)
		return
	}

	realtime.Broadcast(realtime.EventOrderUpdate, gin.H{"order_id": id, "deleted": true})
	if table != nil {
		realtime.Broadcast(realtime.EventTableUpdate, gin.H{"table": table, "stats": tableStats(oc.DB)})
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": id})
}

func broadcastLowStock(items []models.StockItem) {
	for _, item := range items {
		utils.InfoLogger.Printf("Stock item %s is low: %v %s left", item.Name, item.Quantity, item.Unit)
		realtime.Broadcast(realtime.EventStockLow, item)
	}
}
