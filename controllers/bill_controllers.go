package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/realtime"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type BillController struct {
	DB      *gorm.DB
	Billing *services.BillingService
}

func NewBillController(db *gorm.DB, billing *services.BillingService) *BillController {
	return &BillController{DB: db, Billing: billing}
}

// parseIDList reads "1,2,3" into ids; an empty string yields nil.
func parseIDList(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid order id %q", part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// PreviewBill -> GET /tables/:table_id/bill-preview?order_ids=1,2
func (bc *BillController) PreviewBill(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	orderIDs, err := parseIDList(c.Query("order_ids"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	preview, err := bc.Billing.Preview(tableID, orderIDs)
	if err != nil {
		respondServiceError(c, "previewing bill", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill preview", preview)
}

// CreateBill -> POST /bills
func (bc *BillController) CreateBill(c *gin.Context) {
	var body struct {
		TableID        uint                    `json:"table_id" binding:"required"`
		OrderIDs       []uint                  `json:"order_ids"`
		Discount       float64                 `json:"discount"`
		PaymentMethods []services.PaymentInput `json:"payment_methods" binding:"required,min=1,dive"`
		CustomerID     *uint                   `json:"customer_id"`
		Note           string                  `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := bc.Billing.CreateBill(services.CreateBillInput{
		TableID:    body.TableID,
		OrderIDs:   body.OrderIDs,
		Discount:   body.Discount,
		Payments:   body.PaymentMethods,
		CustomerID: body.CustomerID,
		Note:       body.Note,
		CashierID:  currentUserID(c),
	})
	if err != nil {
		respondServiceError(c, "creating bill", err)
		return
	}

	realtime.Broadcast(realtime.EventBillCreated, result.Bill)
	realtime.Broadcast(realtime.EventTableUpdate, gin.H{"table": result.Bill.Table, "stats": tableStats(bc.DB)})
	if result.Customer != nil && result.Bill.CreditAmount > 0 {
		realtime.Broadcast(realtime.EventCustomerUpdate, result.Customer)
	}
	broadcastLowStock(result.LowStock)

	utils.RespondJSON(c, http.StatusCreated, "Bill created", gin.H{
		"bill":           result.Bill,
		"stock_warnings": result.StockFailures,
	})
}

// GetAllBills supports ?from=YYYY-MM-DD&to=YYYY-MM-DD (to inclusive) and ?table_id=
func (bc *BillController) GetAllBills(c *gin.Context) {
	query := bc.DB.Preload("PaymentMethods").Preload("Table").Order("id desc")
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}

	var bills []models.Bill
	if err := query.Find(&bills).Error; err != nil {
		respondDBError(c, "listing bills", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bills", bills)
}

func (bc *BillController) GetBillByID(c *gin.Context) {
	id, ok := paramID(c, "bill_id")
	if !ok {
		return
	}
	bill, err := bc.Billing.GetBill(id)
	if err != nil {
		respondServiceError(c, "loading bill", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

// PrintBill -> POST /bills/:bill_id/print. A print server failure does not fail
// the request; it is reported in print_error.
func (bc *BillController) PrintBill(c *gin.Context) {
	id, ok := paramID(c, "bill_id")
	if !ok {
		return
	}
	bill, printErr, err := bc.Billing.PrintBill(id)
	if err != nil {
		respondServiceError(c, "printing bill", err)
		return
	}

	data := gin.H{"bill": bill}
	if printErr != nil {
		data["print_error"] = "print server unavailable"
	}
	realtime.Broadcast(realtime.EventBillPrinted, gin.H{"bill_id": bill.ID, "print_count": bill.PrintCount})
	utils.RespondJSON(c, http.StatusOK, "Bill printed", data)
}

// parseDateRange turns inclusive YYYY-MM-DD bounds into [from, to+1day).
func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromRaw != "" {
		if from, err = time.ParseInLocation("2006-01-02", fromRaw, time.Local); err != nil {
			return from, to, fmt.Errorf("from must be formatted YYYY-MM-DD")
		}
	}
	if toRaw != "" {
		if to, err = time.ParseInLocation("2006-01-02", toRaw, time.Local); err != nil {
			return from, to, fmt.Errorf("to must be formatted YYYY-MM-DD")
		}
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return from, to, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}
