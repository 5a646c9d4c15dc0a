package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

// Stock movement reasons
const (
	MovementRestock       = "restock"
	MovementOrderCooking  = "order_cooking"
	MovementBilling       = "billing"
	MovementCancelRestore = "cancel_restore"
)

type StockService struct {
	DB *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{DB: db}
}

// requirement is the stock an order (or one item) consumes from a single stock item.
type requirement struct {
	item     models.StockItem
	quantity decimal.Decimal
}

// requirements sums ingredient usage of the given order items, limited to stock
// items with the given deduction type.
func requirements(tx *gorm.DB, items []models.OrderItem, deductionType string) ([]requirement, error) {
	qtyByMenu := make(map[uint]int)
	var menuIDs []uint
	for _, item := range items {
		if item.Status != models.OrderItemStatusActive {
			continue
		}
		if _, seen := qtyByMenu[item.MenuID]; !seen {
			menuIDs = append(menuIDs, item.MenuID)
		}
		qtyByMenu[item.MenuID] += item.Quantity
	}
	if len(menuIDs) == 0 {
		return nil, nil
	}

	var ingredients []models.MenuIngredient
	if err := tx.Preload("StockItem").
		Where("menu_id IN ?", menuIDs).
		Order("stock_item_id asc").
		Find(&ingredients).Error; err != nil {
		return nil, err
	}

	byItem := make(map[uint]*requirement)
	var order []uint
	for _, ing := range ingredients {
		if ing.StockItem.DeductionType != deductionType {
			continue
		}
		need := dec(ing.Quantity).Mul(decimal.NewFromInt(int64(qtyByMenu[ing.MenuID])))
		if r, ok := byItem[ing.StockItemID]; ok {
			r.quantity = r.quantity.Add(need)
			continue
		}
		byItem[ing.StockItemID] = &requirement{item: ing.StockItem, quantity: need}
		order = append(order, ing.StockItemID)
	}

	reqs := make([]requirement, 0, len(order))
	for _, id := range order {
		reqs = append(reqs, *byItem[id])
	}
	return reqs, nil
}

// deduct removes the stock needed by order for one deduction type. Either every
// stock item is decremented or none is: insufficient stock returns a
// ValidationError before anything is written.
func (s *StockService) deduct(tx *gorm.DB, order *models.Order, deductionType, reason string, billID *uint) ([]models.StockItem, error) {
	reqs, err := requirements(tx, order.OrderItems, deductionType)
	if err != nil {
		return nil, err
	}

	for _, r := range reqs {
		var current models.StockItem
		if err := tx.First(&current, r.item.ID).Error; err != nil {
			return nil, lookupErr(err, "stock item", r.item.ID)
		}
		have := dec(current.Quantity).Round(3)
		if have.LessThan(r.quantity) {
			return nil, validationf("insufficient stock for %s: need %s %s, have %s %s",
				current.Name, r.quantity.String(), current.Unit, have.String(), current.Unit)
		}
	}

	var low []models.StockItem
	for _, r := range reqs {
		change := quantity(r.quantity)
		updated, err := adjustQuantity(tx, r.item.ID, r.quantity.Neg())
		if err != nil {
			return nil, err
		}

		orderID := order.ID
		movement := models.StockMovement{
			StockItemID: r.item.ID,
			Change:      -change,
			Reason:      reason,
			OrderID:     &orderID,
			BillID:      billID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return nil, err
		}
		if updated.IsLow() {
			low = append(low, *updated)
		}
	}

	return low, nil
}

// adjustQuantity adds delta to a stock item and stores the result rounded to
// three places. The write is conditional on the quantity that was read, so a
// concurrent change makes it fail instead of being overwritten.
func adjustQuantity(tx *gorm.DB, itemID uint, delta decimal.Decimal) (*models.StockItem, error) {
	var item models.StockItem
	if err := tx.First(&item, itemID).Error; err != nil {
		return nil, lookupErr(err, "stock item", itemID)
	}

	next := dec(item.Quantity).Round(3).Add(delta).Round(3)
	if next.IsNegative() {
		return nil, validationf("insufficient stock for %s", item.Name)
	}

	res := tx.Model(&models.StockItem{}).
		Where("id = ? AND quantity = ?", itemID, item.Quantity).
		Update("quantity", quantity(next))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, validationf("stock of %s was changed by another request, retry", item.Name)
	}
	item.Quantity = quantity(next)
	return &item, nil
}

// restore gives back the stock of a cancelled item whose order was already deducted.
func (s *StockService) restore(tx *gorm.DB, orderID uint, item models.OrderItem, deductionType string) error {
	item.Status = models.OrderItemStatusActive
	reqs, err := requirements(tx, []models.OrderItem{item}, deductionType)
	if err != nil {
		return err
	}

	for _, r := range reqs {
		change := quantity(r.quantity)
		if _, err := adjustQuantity(tx, r.item.ID, r.quantity); err != nil {
			return err
		}
		movement := models.StockMovement{
			StockItemID: r.item.ID,
			Change:      change,
			Reason:      MovementCancelRestore,
			OrderID:     &orderID,
			Note:        fmt.Sprintf("order item %d cancelled", item.ID),
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeductForBill applies, best-effort, every deduction of a billed order that has
// not run yet. Each deduction type runs in its own transaction; a failure is
// logged and reported back but never undoes the bill.
func (s *StockService) DeductForBill(order *models.Order, billID uint) ([]models.StockItem, []string) {
	var low []models.StockItem
	var failures []string

	pending := []struct {
		deductionType string
		column        string
		done          bool
	}{
		{models.DeductionAutomatic, "auto_stock_deducted", order.AutoStockDeducted},
		{models.DeductionManual, "manual_stock_deducted", order.ManualStockDeducted},
	}

	for _, p := range pending {
		if p.done {
			continue
		}
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			items, err := s.deduct(tx, order, p.deductionType, MovementBilling, &billID)
			if err != nil {
				return err
			}
			low = append(low, items...)
			return tx.Model(&models.Order{}).Where("id = ?", order.ID).Update(p.column, true).Error
		})
		if err != nil {
			msg := fmt.Sprintf("order #%d %s stock deduction failed: %v", order.ID, p.deductionType, err)
			utils.ErrorLogger.Printf("Bill %d: %s", billID, msg)
			failures = append(failures, msg)
		}
	}

	return low, failures
}

// Restock adds quantity to a stock item and records the movement.
func (s *StockService) Restock(itemID uint, amount float64, note string, userID *uint) (*models.StockItem, error) {
	if amount <= 0 {
		return nil, validationf("restock quantity must be greater than 0")
	}

	var item models.StockItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		updated, err := adjustQuantity(tx, itemID, dec(amount))
		if err != nil {
			return err
		}
		item = *updated
		movement := models.StockMovement{
			StockItemID: itemID,
			Change:      amount,
			Reason:      MovementRestock,
			Note:        note,
			CreatedBy:   userID,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Stock item %d (%s) restocked by %v, now %v", item.ID, item.Name, amount, item.Quantity)
	return &item, nil
}

func (s *StockService) LowStock() ([]models.StockItem, error) {
	var items []models.StockItem
	err := s.DB.Where("quantity <= threshold").Order("name asc").Find(&items).Error
	return items, err
}
