package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseController struct {
	DB *gorm.DB
}

func NewExpenseController(db *gorm.DB) *ExpenseController {
	return &ExpenseController{DB: db}
}

type expenseRequest struct {
	Category    string  `json:"category" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description"`
	SpentAt     string  `json:"spent_at"`
}

// spentAt accepts YYYY-MM-DD or RFC3339 and defaults to now.
func (r expenseRequest) spentAt() (time.Time, error) {
	if r.SpentAt == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, r.SpentAt); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", r.SpentAt, time.Local)
	if err != nil {
		return t, errors.New("spent_at must be YYYY-MM-DD or RFC3339")
	}
	return t, nil
}

// GetAllExpenses supports ?category= and ?from=&to= (YYYY-MM-DD, inclusive)
func (ec *ExpenseController) GetAllExpenses(c *gin.Context) {
	query := ec.DB.Order("spent_at desc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", strings.ToLower(category))
	}
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !from.IsZero() {
		query = query.Where("spent_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("spent_at < ?", to)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		respondDBError(c, "listing expenses", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of expenses", expenses)
}

func (ec *ExpenseController) GetExpenseByID(c *gin.Context) {
	id, ok := paramID(c, "expense_id")
	if !ok {
		return
	}
	var expense models.Expense
	if err := ec.DB.First(&expense, id).Error; err != nil {
		respondLookupError(c, "expense", id, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Expense detail", expense)
}

func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	spentAt, err := req.spentAt()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	expense := models.Expense{
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Amount:      req.Amount,
		Description: req.Description,
		SpentAt:     spentAt,
		CreatedBy:   currentUserID(c),
	}
	if err := ec.DB.Create(&expense).Error; err != nil {
		respondDBError(c, "creating expense", err)
		return
	}

	utils.InfoLogger.Printf("Expense recorded: %s %.2f", expense.Category, expense.Amount)
	utils.RespondJSON(c, http.StatusCreated, "Expense recorded", expense)
}

func (ec *ExpenseController) UpdateExpense(c *gin.Context) {
	id, ok := paramID(c, "expense_id")
	if !ok {
		return
	}
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var expense models.Expense
	if err := ec.DB.First(&expense, id).Error; err != nil {
		respondLookupError(c, "expense", id, err)
		return
	}
	if req.SpentAt != "" {
		spentAt, err := req.spentAt()
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		expense.SpentAt = spentAt
	}
	expense.Category = strings.ToLower(strings.TrimSpace(req.Category))
	expense.Amount = req.Amount
	expense.Description = req.Description

	if err := ec.DB.Save(&expense).Error; err != nil {
		respondDBError(c, "updating expense", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Expense updated", expense)
}

func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	id, ok := paramID(c, "expense_id")
	if !ok {
		return
	}
	res := ec.DB.Delete(&models.Expense{}, id)
	if res.Error != nil {
		respondDBError(c, "deleting expense", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondLookupError(c, "expense", id, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Expense deleted", gin.H{"expense_id": id})
}

// GetBudgets supports ?month=YYYY-MM
func (ec *ExpenseController) GetBudgets(c *gin.Context) {
	query := ec.DB.Order("month desc, category asc")
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}
	var budgets []models.Budget
	if err := query.Find(&budgets).Error; err != nil {
		respondDBError(c, "listing budgets", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of budgets", budgets)
}

// UpsertBudget sets the budget of a category for one month.
func (ec *ExpenseController) UpsertBudget(c *gin.Context) {
	var req struct {
		Category string  `json:"category" binding:"required"`
		Month    string  `json:"month" binding:"required"`
		Amount   float64 `json:"amount" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("month must be formatted YYYY-MM"))
		return
	}

	budget := models.Budget{
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Month:    req.Month,
		Amount:   req.Amount,
	}
	if err := ec.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&budget).Error; err != nil {
		respondDBError(c, "saving budget", err)
		return
	}

	if err := ec.DB.Where("category = ? AND month = ?", budget.Category, budget.Month).First(&budget).Error; err != nil {
		respondDBError(c, "reloading budget", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Budget saved", budget)
}

func (ec *ExpenseController) DeleteBudget(c *gin.Context) {
	id, ok := paramID(c, "budget_id")
	if !ok {
		return
	}
	res := ec.DB.Delete(&models.Budget{}, id)
	if res.Error != nil {
		respondDBError(c, "deleting budget", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondLookupError(c, "budget", id, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Budget deleted", gin.H{"budget_id": id})
}
