package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type StockController struct {
	DB    *gorm.DB
	Stock *services.StockService
}

func NewStockController(db *gorm.DB, stock *services.StockService) *StockController {
	return &StockController{DB: db, Stock: stock}
}

func validDeductionType(t string) bool {
	return t == models.DeductionAutomatic || t == models.DeductionManual
}

func (sc *StockController) GetAllStock(c *gin.Context) {
	query := sc.DB.Order("name asc")
	if t := c.Query("deduction_type"); t != "" {
		query = query.Where("deduction_type = ?", t)
	}
	var items []models.StockItem
	if err := query.Find(&items).Error; err != nil {
		respondDBError(c, "listing stock", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of stock items", items)
}

func (sc *StockController) GetStockByID(c *gin.Context) {
	id, ok := paramID(c, "stock_id")
	if !ok {
		return
	}
	var item models.StockItem
	if err := sc.DB.First(&item, id).Error; err != nil {
		respondLookupError(c, "stock item", id, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock item detail", item)
}

// CreateStock registers an item with its opening quantity, recorded as a restock.
func (sc *StockController) CreateStock(c *gin.Context) {
	var req struct {
		Name          string  `json:"name" binding:"required"`
		Unit          string  `json:"unit" binding:"required"`
		Quantity      float64 `json:"quantity" binding:"gte=0"`
		Threshold     float64 `json:"threshold" binding:"gte=0"`
		DeductionType string  `json:"deduction_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.DeductionType == "" {
		req.DeductionType = models.DeductionAutomatic
	}
	if !validDeductionType(req.DeductionType) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("deduction_type must be automatic or manual"))
		return
	}

	var existing int64
	if err := sc.DB.Model(&models.StockItem{}).Where("name = ?", req.Name).Count(&existing).Error; err != nil {
		respondDBError(c, "checking stock name", err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("stock item already exists"))
		return
	}

	item := models.StockItem{
		Name:          req.Name,
		Unit:          req.Unit,
		Threshold:     req.Threshold,
		DeductionType: req.DeductionType,
	}
	if err := sc.DB.Create(&item).Error; err != nil {
		respondDBError(c, "creating stock item", err)
		return
	}
	if req.Quantity > 0 {
		restocked, err := sc.Stock.Restock(item.ID, req.Quantity, "opening quantity", currentUserID(c))
		if err != nil {
			respondServiceError(c, "recording opening quantity", err)
			return
		}
		item = *restocked
	}

	utils.InfoLogger.Printf("Stock item created: %s (%v %s)", item.Name, item.Quantity, item.Unit)
	utils.RespondJSON(c, http.StatusCreated, "Stock item created", item)
}

// UpdateStock edits metadata only; quantity moves through restock and orders.
func (sc *StockController) UpdateStock(c *gin.Context) {
	id, ok := paramID(c, "stock_id")
	if !ok {
		return
	}
	var req struct {
		Name          string   `json:"name"`
		Unit          string   `json:"unit"`
		Threshold     *float64 `json:"threshold" binding:"omitempty,gte=0"`
		DeductionType string   `json:"deduction_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.DeductionType != "" && !validDeductionType(req.DeductionType) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("deduction_type must be automatic or manual"))
		return
	}

	var item models.StockItem
	if err := sc.DB.First(&item, id).Error; err != nil {
		respondLookupError(c, "stock item", id, err)
		return
	}
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	if req.Threshold != nil {
		item.Threshold = *req.Threshold
	}
	if req.DeductionType != "" {
		item.DeductionType = req.DeductionType
	}

	if err := sc.DB.Model(&item).Updates(map[string]interface{}{
		"name":           item.Name,
		"unit":           item.Unit,
		"threshold":      item.Threshold,
		"deduction_type": item.DeductionType,
	}).Error; err != nil {
		respondDBError(c, "updating stock item", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock item updated", item)
}

// Restock -> POST /stock/:stock_id/restock {quantity, note}
func (sc *StockController) Restock(c *gin.Context) {
	id, ok := paramID(c, "stock_id")
	if !ok {
		return
	}
	var req struct {
		Quantity float64 `json:"quantity" binding:"required,gt=0"`
		Note     string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := sc.Stock.Restock(id, req.Quantity, req.Note, currentUserID(c))
	if err != nil {
		respondServiceError(c, "restocking", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock restocked", item)
}

func (sc *StockController) GetLowStock(c *gin.Context) {
	items, err := sc.Stock.LowStock()
	if err != nil {
		respondDBError(c, "listing low stock", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Low stock items", items)
}

func (sc *StockController) GetMovements(c *gin.Context) {
	id, ok := paramID(c, "stock_id")
	if !ok {
		return
	}
	var item models.StockItem
	if err := sc.DB.First(&item, id).Error; err != nil {
		respondLookupError(c, "stock item", id, err)
		return
	}

	var movements []models.StockMovement
	if err := sc.DB.Where("stock_item_id = ?", id).Order("id desc").Find(&movements).Error; err != nil {
		respondDBError(c, "listing stock movements", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock movements", movements)
}
