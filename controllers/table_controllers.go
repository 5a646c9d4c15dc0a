package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/realtime"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> a new table always starts available
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Number   string `json:"number" binding:"required"`
		Capacity int    `json:"capacity" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing int64
	if err := tc.DB.Model(&models.Table{}).Where("number = ?", req.Number).Count(&existing).Error; err != nil {
		respondDBError(c, "checking table number", err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("table number already exists"))
		return
	}

	table := models.Table{
		Number:   req.Number,
		Capacity: req.Capacity,
		Status:   models.TableStatusAvailable,
	}
	if table.Capacity == 0 {
		table.Capacity = 4
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		respondDBError(c, "creating table", err)
		return
	}

	realtime.Broadcast(realtime.EventTableUpdate, gin.H{"table": table, "stats": tc.stats()})
	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.Number, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables lists tables, optionally filtered with ?status=
func (tc *TableController) GetAllTables(c *gin.Context) {
	query := tc.DB.Order("number asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tables []models.Table
	if err := query.Find(&tables).Error; err != nil {
		respondDBError(c, "listing tables", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		respondLookupError(c, "table", id, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable changes number and capacity. Status only moves with orders and bills.
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var req struct {
		Number   string `json:"number"`
		Capacity int    `json:"capacity" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		respondLookupError(c, "table", id, err)
		return
	}

	if req.Number != "" && req.Number != table.Number {
		var existing int64
		if err := tc.DB.Model(&models.Table{}).Where("number = ? AND id <> ?", req.Number, id).Count(&existing).Error; err != nil {
			respondDBError(c, "checking table number", err)
			return
		}
		if existing > 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("table number already exists"))
			return
		}
		table.Number = req.Number
	}
	if req.Capacity > 0 {
		table.Capacity = req.Capacity
	}

	if err := tc.DB.Model(&table).Updates(map[string]interface{}{
		"number":   table.Number,
		"capacity": table.Capacity,
	}).Error; err != nil {
		respondDBError(c, "updating table", err)
		return
	}

	realtime.Broadcast(realtime.EventTableUpdate, gin.H{"table": table, "stats": tc.stats()})
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable only removes tables nobody is sitting at.
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		respondLookupError(c, "table", id, err)
		return
	}
	if table.Status != models.TableStatusAvailable {
		utils.RespondError(c, http.StatusBadRequest, errors.New("only available tables can be deleted"))
		return
	}

	var orders int64
	if err := tc.DB.Model(&models.Order{}).Where("table_id = ?", id).Count(&orders).Error; err != nil {
		respondDBError(c, "counting table orders", err)
		return
	}
	if orders > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("table has order history and cannot be deleted"))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		respondDBError(c, "deleting table", err)
		return
	}

	realtime.Broadcast(realtime.EventTableUpdate, gin.H{"table_id": table.ID, "deleted": true, "stats": tc.stats()})
	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}

// stats counts tables per status for dashboards listening on the hub.
func (tc *TableController) stats() map[string]int64 {
	return tableStats(tc.DB)
}

func tableStats(db *gorm.DB) map[string]int64 {
	stats := map[string]int64{}
	var total int64
	for _, status := range []string{models.TableStatusAvailable, models.TableStatusOccupied, models.TableStatusWaitingForBill} {
		var n int64
		db.Model(&models.Table{}).Where("status = ?", status).Count(&n)
		stats[status] = n
		total += n
	}
	stats["total"] = total
	return stats
}
