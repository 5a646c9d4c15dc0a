package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{Reports: reports}
}

// GetSalesReport -> ?from=YYYY-MM-DD&to=YYYY-MM-DD (inclusive, default last 7 days)&top=10
func (rc *ReportController) GetSalesReport(c *gin.Context) {
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	now := time.Now()
	if to.IsZero() {
		to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -7)
	}

	top := 10
	if raw := c.Query("top"); raw != "" {
		top, err = strconv.Atoi(raw)
		if err != nil || top < 1 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("top must be a positive number"))
			return
		}
	}

	report, err := rc.Reports.Sales(from, to, top)
	if err != nil {
		respondServiceError(c, "building sales report", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales report", report)
}

func (rc *ReportController) GetDashboard(c *gin.Context) {
	dash, err := rc.Reports.Dashboard(time.Now())
	if err != nil {
		respondServiceError(c, "building dashboard", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard", dash)
}

// GetBudgetSummary -> ?month=YYYY-MM (default current month)
func (rc *ReportController) GetBudgetSummary(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	summary, err := rc.Reports.BudgetSummary(month)
	if err != nil {
		respondServiceError(c, "building budget summary", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Budget summary", summary)
}
