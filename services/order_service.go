package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemInput struct {
	MenuID      uint   `json:"menu_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	VariationID *uint  `json:"variation_id"`
	AddOnIDs    []uint `json:"add_on_ids"`
	Notes       string `json:"notes"`
}

// StatusChange is the outcome of a successful status transition. Table is set
// only when the table status changed as a consequence.
type StatusChange struct {
	Order    *models.Order
	Table    *models.Table
	LowStock []models.StockItem
}

type OrderService struct {
	DB    *gorm.DB
	Stock *StockService
}

func NewOrderService(db *gorm.DB, stock *StockService) *OrderService {
	return &OrderService{DB: db, Stock: stock}
}

func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	return loadOrder(s.DB, id)
}

func loadOrder(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id asc")
	}).Preload("OrderItems.AddOns").
		Preload("OrderItems.Menu").
		Preload("Table").
		First(&order, id).Error; err != nil {
		return nil, lookupErr(err, "order", id)
	}
	return &order, nil
}

// buildItem prices one requested line from the current menu.
func buildItem(tx *gorm.DB, in OrderItemInput) (*models.OrderItem, error) {
	if in.Quantity < 1 {
		return nil, validationf("quantity for menu %d must be at least 1", in.MenuID)
	}

	var menu models.Menu
	if err := tx.Preload("Variations").Preload("AddOns").First(&menu, in.MenuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("menu %d does not exist", in.MenuID)
		}
		return nil, err
	}
	if !menu.Available {
		return nil, validationf("%s is not available", menu.Name)
	}

	item := &models.OrderItem{
		MenuID:   menu.ID,
		Quantity: in.Quantity,
		Notes:    in.Notes,
		Status:   models.OrderItemStatusActive,
	}

	unit := dec(menu.Price)
	if in.VariationID != nil {
		var found *models.MenuVariation
		for i := range menu.Variations {
			if menu.Variations[i].ID == *in.VariationID {
				found = &menu.Variations[i]
				break
			}
		}
		if found == nil {
			return nil, validationf("variation %d does not belong to %s", *in.VariationID, menu.Name)
		}
		unit = dec(found.Price)
		item.VariationID = &found.ID
		item.VariationName = found.Name
	}

	for _, addOnID := range in.AddOnIDs {
		var found *models.MenuAddOn
		for i := range menu.AddOns {
			if menu.AddOns[i].ID == addOnID {
				found = &menu.AddOns[i]
				break
			}
		}
		if found == nil {
			return nil, validationf("add-on %d does not belong to %s", addOnID, menu.Name)
		}
		unit = unit.Add(dec(found.Price))
		item.AddOns = append(item.AddOns, models.OrderItemAddOn{
			AddOnID: found.ID,
			Name:    found.Name,
			Price:   found.Price,
		})
	}

	item.UnitPrice = money(unit)
	item.LinePrice = money(unit.Mul(decimal.NewFromInt(int64(in.Quantity))))
	return item, nil
}

// CreateOrder places a pending order on a table and marks the table occupied.
func (s *OrderService) CreateOrder(tableID uint, waiterID *uint, inputs []OrderItemInput) (*models.Order, *models.Table, error) {
	if len(inputs) == 0 {
		return nil, nil, validationf("an order needs at least one item")
	}

	var table models.Table
	var orderID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, tableID).Error; err != nil {
			return lookupErr(err, "table", tableID)
		}

		items := make([]models.OrderItem, 0, len(inputs))
		total := decimal.Zero
		for _, in := range inputs {
			item, err := buildItem(tx, in)
			if err != nil {
				return err
			}
			total = total.Add(dec(item.LinePrice))
			items = append(items, *item)
		}

		order := models.Order{
			TableID:     table.ID,
			WaiterID:    waiterID,
			Status:      models.OrderStatusPending,
			TotalAmount: money(total),
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Omit("Order", "Menu").Create(&items[i]).Error; err != nil {
				return err
			}
		}

		if table.Status != models.TableStatusOccupied {
			table.Status = models.TableStatusOccupied
			if err := tx.Model(&table).Update("status", table.Status).Error; err != nil {
				return err
			}
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	utils.InfoLogger.Printf("Order #%d created on table %s", orderID, table.Number)
	order, err := s.GetOrder(orderID)
	return order, &table, err
}

// UpdateStatus moves an order forward through pending, cooking, ready, served.
// Reaching cooking deducts automatic stock in the same transaction; serving the
// last open order of a table puts the table in waiting_for_bill.
func (s *OrderService) UpdateStatus(orderID uint, newStatus string) (*StatusChange, error) {
	newRank := models.OrderStatusRank(newStatus)
	if newRank < 0 {
		return nil, validationf("unknown order status %q", newStatus)
	}

	change := &StatusChange{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Billed {
			return validationf("order #%d is already billed", order.ID)
		}

		currentRank := models.OrderStatusRank(order.Status)
		if newRank == currentRank {
			return validationf("order #%d is already %s", order.ID, order.Status)
		}
		if newRank < currentRank {
			return validationf("order #%d cannot move back from %s to %s", order.ID, order.Status, newStatus)
		}

		cookingRank := models.OrderStatusRank(models.OrderStatusCooking)
		now := time.Now()
		updates := map[string]interface{}{"status": newStatus}

		if newRank >= cookingRank && !order.AutoStockDeducted {
			low, err := s.Stock.deduct(tx, order, models.DeductionAutomatic, MovementOrderCooking, nil)
			if err != nil {
				return err
			}
			change.LowStock = low
			updates["auto_stock_deducted"] = true
			order.AutoStockDeducted = true
		}

		switch newStatus {
		case models.OrderStatusCooking:
			updates["cooking_at"] = now
		case models.OrderStatusReady:
			updates["ready_at"] = now
		case models.OrderStatusServed:
			updates["served_at"] = now
		}

		// Guard against a concurrent transition or bill of the same order.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND billed = ?", order.ID, order.Status, false).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return validationf("order #%d was changed by another request, reload and retry", order.ID)
		}

		if newStatus == models.OrderStatusServed {
			var unserved int64
			if err := tx.Model(&models.Order{}).
				Where("table_id = ? AND billed = ? AND status <> ? AND id <> ?",
					order.TableID, false, models.OrderStatusServed, order.ID).
				Count(&unserved).Error; err != nil {
				return err
			}
			if unserved == 0 {
				var table models.Table
				if err := tx.First(&table, order.TableID).Error; err != nil {
					return lookupErr(err, "table", order.TableID)
				}
				if table.Status != models.TableStatusWaitingForBill {
					table.Status = models.TableStatusWaitingForBill
					if err := tx.Model(&table).Update("status", table.Status).Error; err != nil {
						return err
					}
					change.Table = &table
				}
			}
		}

		change.Order, err = loadOrder(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("%s moved to %s", change.Order.Label(), change.Order.Status)
	return change, nil
}

// CancelItem cancels one line of an unbilled, unserved order and recomputes the
// order total. Stock already deducted for the line is given back.
func (s *OrderService) CancelItem(orderID, itemID uint) (*models.Order, error) {
	var result *models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Billed {
			return validationf("order #%d is already billed", order.ID)
		}
		if order.Status == models.OrderStatusServed {
			return validationf("order #%d is already served", order.ID)
		}

		var target *models.OrderItem
		for i := range order.OrderItems {
			if order.OrderItems[i].ID == itemID {
				target = &order.OrderItems[i]
				break
			}
		}
		if target == nil {
			return notFound("order item", itemID)
		}
		if target.Status == models.OrderItemStatusCancelled {
			return validationf("order item %d is already cancelled", itemID)
		}

		if order.AutoStockDeducted {
			if err := s.Stock.restore(tx, order.ID, *target, models.DeductionAutomatic); err != nil {
				return err
			}
		}

		target.Status = models.OrderItemStatusCancelled
		if err := tx.Model(&models.OrderItem{}).Where("id = ?", itemID).
			Update("status", models.OrderItemStatusCancelled).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("total_amount", money(dec(order.ActiveTotal()))).Error; err != nil {
			return err
		}

		result, err = loadOrder(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("%s item %d cancelled", result.Label(), itemID)
	return result, nil
}

// DeleteOrder removes a pending, unbilled order. The table is released when no
// other unbilled order remains on it; the released table is returned.
func (s *OrderService) DeleteOrder(orderID uint) (*models.Table, error) {
	var released *models.Table
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Billed || order.Status != models.OrderStatusPending {
			return validationf("only pending, unbilled orders can be deleted")
		}

		itemIDs := make([]uint, 0, len(order.OrderItems))
		for _, item := range order.OrderItems {
			itemIDs = append(itemIDs, item.ID)
		}
		if len(itemIDs) > 0 {
			if err := tx.Where("order_item_id IN ?", itemIDs).Delete(&models.OrderItemAddOn{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Order{}, order.ID).Error; err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&models.Order{}).
			Where("table_id = ? AND billed = ?", order.TableID, false).
			Count(&open).Error; err != nil {
			return err
		}
		if open == 0 {
			var table models.Table
			if err := tx.First(&table, order.TableID).Error; err != nil {
				return lookupErr(err, "table", order.TableID)
			}
			table.Status = models.TableStatusAvailable
			if err := tx.Model(&table).Update("status", table.Status).Error; err != nil {
				return err
			}
			released = &table
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order #%d deleted", orderID)
	return released, nil
}
