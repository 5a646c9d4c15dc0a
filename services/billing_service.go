package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentInput struct {
	Type   string  `json:"type" binding:"required"`
	Amount float64 `json:"amount"`
}

type CreateBillInput struct {
	TableID    uint
	OrderIDs   []uint
	Discount   float64
	Payments   []PaymentInput
	CustomerID *uint
	Note       string
	CashierID  *uint
}

// BillTotals are the amounts of a bill, rounded to cents.
type BillTotals struct {
	Subtotal float64 `json:"subtotal"`
	TaxRate  float64 `json:"tax_rate"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

type BillPreview struct {
	TableID       uint           `json:"table_id"`
	OrderCount    int            `json:"order_count"`
	Orders        []models.Order `json:"orders"`
	AlreadyBilled bool           `json:"already_billed"`
	LastBillID    *uint          `json:"last_bill_id,omitempty"`
	BillTotals
}

type BillResult struct {
	Bill          *models.Bill
	Customer      *models.Customer
	LowStock      []models.StockItem
	StockFailures []string
}

type BillingService struct {
	DB        *gorm.DB
	Stock     *StockService
	Credit    *CreditService
	Printer   *PrintClient
	TaxRate   float64
	Tolerance float64
}

func NewBillingService(db *gorm.DB, stock *StockService, credit *CreditService, taxRate, tolerance float64) *BillingService {
	return &BillingService{
		DB:        db,
		Stock:     stock,
		Credit:    credit,
		TaxRate:   taxRate,
		Tolerance: tolerance,
	}
}

// ComputeTotals sums the active lines of orders, applies taxRate (percent) and
// subtracts discount. The discount must lie between 0 and subtotal+tax.
func ComputeTotals(orders []models.Order, taxRate, discount float64) (BillTotals, error) {
	subtotal := decimal.Zero
	for _, order := range orders {
		for _, item := range order.OrderItems {
			if item.Status == models.OrderItemStatusActive {
				subtotal = subtotal.Add(dec(item.LinePrice))
			}
		}
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(dec(taxRate)).Div(decimal.NewFromInt(100)).Round(2)
	gross := subtotal.Add(tax)
	disc := dec(discount).Round(2)

	if disc.IsNegative() {
		return BillTotals{}, validationf("discount cannot be negative")
	}
	if disc.GreaterThan(gross) {
		return BillTotals{}, validationf("discount %s exceeds subtotal plus tax %s", disc.StringFixed(2), gross.StringFixed(2))
	}

	return BillTotals{
		Subtotal: money(subtotal),
		TaxRate:  taxRate,
		Tax:      money(tax),
		Discount: money(disc),
		Total:    money(gross.Sub(disc)),
	}, nil
}

// ValidatePayments checks every entry and that the entries add up to total
// within tolerance. It returns the portion paid on customer credit.
func ValidatePayments(payments []PaymentInput, total, tolerance float64) (float64, error) {
	if len(payments) == 0 {
		return 0, validationf("at least one payment method is required")
	}

	sum := decimal.Zero
	credit := decimal.Zero
	for _, p := range payments {
		method := strings.ToLower(strings.TrimSpace(p.Type))
		if !models.IsValidPaymentMethod(method) {
			return 0, validationf("unknown payment method %q", p.Type)
		}
		amount := dec(p.Amount)
		if !amount.IsPositive() {
			return 0, validationf("payment amount for %s must be greater than 0", method)
		}
		sum = sum.Add(amount)
		if method == models.PaymentMethodCredit {
			credit = credit.Add(amount)
		}
	}

	if sum.Sub(dec(total)).Abs().GreaterThan(dec(tolerance)) {
		return 0, validationf("payments total %s does not match bill total %s",
			sum.StringFixed(2), dec(total).StringFixed(2))
	}
	return money(credit), nil
}

// eligibleOrders returns the unbilled served orders of a table, or the requested
// subset of them.
func eligibleOrders(db *gorm.DB, tableID uint, orderIDs []uint) ([]models.Order, error) {
	var table models.Table
	if err := db.First(&table, tableID).Error; err != nil {
		return nil, lookupErr(err, "table", tableID)
	}

	query := db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id asc")
	}).Preload("OrderItems.AddOns").
		Preload("OrderItems.Menu").
		Where("table_id = ? AND billed = ? AND status = ?", tableID, false, models.OrderStatusServed)
	if len(orderIDs) > 0 {
		query = query.Where("id IN ?", orderIDs)
	}

	var orders []models.Order
	if err := query.Order("id asc").Find(&orders).Error; err != nil {
		return nil, err
	}

	if len(orderIDs) > 0 {
		found := make(map[uint]bool, len(orders))
		for _, o := range orders {
			found[o.ID] = true
		}
		for _, id := range orderIDs {
			if !found[id] {
				return nil, validationf("order #%d is not an unbilled served order of table %d", id, tableID)
			}
		}
	}
	return orders, nil
}

// Preview shows what a bill for the table would contain. AlreadyBilled reports
// that nothing is left to bill and the table's latest order went out on a bill.
func (s *BillingService) Preview(tableID uint, orderIDs []uint) (*BillPreview, error) {
	orders, err := eligibleOrders(s.DB, tableID, orderIDs)
	if err != nil {
		return nil, err
	}

	totals, err := ComputeTotals(orders, s.TaxRate, 0)
	if err != nil {
		return nil, err
	}

	preview := &BillPreview{
		TableID:    tableID,
		OrderCount: len(orders),
		Orders:     orders,
		BillTotals: totals,
	}

	if len(orders) == 0 {
		var latest models.Order
		err := s.DB.Where("table_id = ?", tableID).Order("id desc").Limit(1).Find(&latest).Error
		if err != nil {
			return nil, err
		}
		if latest.ID != 0 && latest.Billed {
			preview.AlreadyBilled = true
			preview.LastBillID = latest.BillID
		}
	}
	return preview, nil
}

func newBillNumber(now time.Time) string {
	return fmt.Sprintf("BILL-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.New().String()[:8]))
}

// CreateBill settles the served orders of a table. The bill, its payments, the
// billed flags, any customer credit and the table status are written in one
// transaction. Stock deductions still owed by the orders run afterwards and
// are best-effort.
func (s *BillingService) CreateBill(in CreateBillInput) (*BillResult, error) {
	orders, err := eligibleOrders(s.DB, in.TableID, in.OrderIDs)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, validationf("table %d has no served orders awaiting a bill", in.TableID)
	}

	totals, err := ComputeTotals(orders, s.TaxRate, in.Discount)
	if err != nil {
		return nil, err
	}
	creditAmount, err := ValidatePayments(in.Payments, totals.Total, s.Tolerance)
	if err != nil {
		return nil, err
	}
	if creditAmount > 0 && in.CustomerID == nil {
		return nil, validationf("a customer must be selected for credit payments")
	}

	orderIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	result := &BillResult{}
	bill := models.Bill{
		BillNumber:   newBillNumber(time.Now()),
		TableID:      in.TableID,
		Subtotal:     totals.Subtotal,
		TaxRate:      totals.TaxRate,
		Tax:          totals.Tax,
		Discount:     totals.Discount,
		Total:        totals.Total,
		CustomerID:   in.CustomerID,
		CreditAmount: creditAmount,
		CashierID:    in.CashierID,
		Note:         in.Note,
	}
	for _, p := range in.Payments {
		bill.PaymentMethods = append(bill.PaymentMethods, models.BillPayment{
			Type:   strings.ToLower(strings.TrimSpace(p.Type)),
			Amount: money(dec(p.Amount)),
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var customer *models.Customer
		if in.CustomerID != nil {
			var c models.Customer
			if err := tx.First(&c, *in.CustomerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationf("customer %d does not exist", *in.CustomerID)
				}
				return err
			}
			if creditAmount > 0 && c.Status != models.CustomerStatusActive {
				return validationf("customer %s is not active", c.Name)
			}
			customer = &c
		}

		if err := tx.Omit("Table", "Orders", "Customer").Create(&bill).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id IN ? AND billed = ?", orderIDs, false).
			Updates(map[string]interface{}{"billed": true, "bill_id": bill.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(orderIDs)) {
			return validationf("one or more orders of table %d were billed by another request", in.TableID)
		}

		if customer != nil && creditAmount > 0 {
			billID := bill.ID
			updated, _, err := s.Credit.apply(tx, customer.ID, creditAmount, models.CreditTxnCredit, "",
				fmt.Sprintf("credit on %s", bill.BillNumber), &billID, in.CashierID)
			if err != nil {
				return err
			}
			customer = updated
		}
		result.Customer = customer

		status, err := tableStatusAfterBilling(tx, in.TableID)
		if err != nil {
			return err
		}
		return tx.Model(&models.Table{}).Where("id = ?", in.TableID).
			Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Bill %s created for table %d: total %.2f over %d orders",
		bill.BillNumber, in.TableID, bill.Total, len(orders))

	for i := range orders {
		low, failures := s.Stock.DeductForBill(&orders[i], bill.ID)
		result.LowStock = append(result.LowStock, low...)
		result.StockFailures = append(result.StockFailures, failures...)
	}

	result.Bill, err = s.GetBill(bill.ID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// tableStatusAfterBilling derives the table status from the orders still
// unbilled on it: none frees the table, only served ones wait for a bill.
func tableStatusAfterBilling(tx *gorm.DB, tableID uint) (string, error) {
	var open, unserved int64
	if err := tx.Model(&models.Order{}).
		Where("table_id = ? AND billed = ?", tableID, false).
		Count(&open).Error; err != nil {
		return "", err
	}
	if open == 0 {
		return models.TableStatusAvailable, nil
	}
	if err := tx.Model(&models.Order{}).
		Where("table_id = ? AND billed = ? AND status <> ?", tableID, false, models.OrderStatusServed).
		Count(&unserved).Error; err != nil {
		return "", err
	}
	if unserved == 0 {
		return models.TableStatusWaitingForBill, nil
	}
	return models.TableStatusOccupied, nil
}

func (s *BillingService) GetBill(id uint) (*models.Bill, error) {
	var bill models.Bill
	if err := s.DB.Preload(clause.Associations).
		Preload("Orders.OrderItems").
		Preload("Orders.OrderItems.AddOns").
		Preload("Orders.OrderItems.Menu").
		First(&bill, id).Error; err != nil {
		return nil, lookupErr(err, "bill", id)
	}
	return &bill, nil
}

// PrintBill increments the print counter and hands the bill to the print server
// when one is configured. A print server failure is logged and returned as the
// second value; the counter increment stands.
func (s *BillingService) PrintBill(id uint) (*models.Bill, error, error) {
	res := s.DB.Model(&models.Bill{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"print_count":     gorm.Expr("print_count + 1"),
			"last_printed_at": time.Now(),
		})
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil, notFound("bill", id)
	}

	bill, err := s.GetBill(id)
	if err != nil {
		return nil, nil, err
	}

	var printErr error
	if s.Printer != nil {
		if printErr = s.Printer.PrintBill(bill); printErr != nil {
			utils.ErrorLogger.Printf("Printing bill %s failed: %v", bill.BillNumber, printErr)
		}
	}
	return bill, printErr, nil
}
