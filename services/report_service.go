package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"gorm.io/gorm"
)

type MethodTotal struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type DailySales struct {
	Date    string  `json:"date"`
	Bills   int     `json:"bills"`
	Revenue float64 `json:"revenue"`
}

type ItemSales struct {
	MenuID   uint    `json:"menu_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type SalesReport struct {
	From      time.Time     `json:"from"`
	To        time.Time     `json:"to"`
	BillCount int           `json:"bill_count"`
	Subtotal  float64       `json:"subtotal"`
	Tax       float64       `json:"tax"`
	Discount  float64       `json:"discount"`
	Revenue   float64       `json:"revenue"`
	Credit    float64       `json:"credit"`
	ByMethod  []MethodTotal `json:"by_method"`
	ByDay     []DailySales  `json:"by_day"`
	TopItems  []ItemSales   `json:"top_items"`
}

type Dashboard struct {
	Tables        map[string]int64 `json:"tables"`
	OpenOrders    map[string]int64 `json:"open_orders"`
	TodayBills    int              `json:"today_bills"`
	TodayRevenue  float64          `json:"today_revenue"`
	LowStockCount int64            `json:"low_stock_count"`
}

type BudgetLine struct {
	Category   string  `json:"category"`
	Budget     float64 `json:"budget"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	OverBudget bool    `json:"over_budget"`
}

type BudgetSummary struct {
	Month       string       `json:"month"`
	Categories  []BudgetLine `json:"categories"`
	TotalBudget float64      `json:"total_budget"`
	TotalSpent  float64      `json:"total_spent"`
}

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

// Sales aggregates the bills created in [from, to). Aggregation happens in Go so
// the same code runs on MySQL and SQLite.
func (s *ReportService) Sales(from, to time.Time, topN int) (*SalesReport, error) {
	if !to.After(from) {
		return nil, validationf("report end must be after its start")
	}
	if topN <= 0 {
		topN = 10
	}

	var bills []models.Bill
	if err := s.DB.Preload("PaymentMethods").
		Preload("Orders.OrderItems").
		Preload("Orders.OrderItems.Menu").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&bills).Error; err != nil {
		return nil, err
	}

	report := &SalesReport{From: from, To: to, BillCount: len(bills)}
	subtotal, tax, discount, revenue, credit := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero

	methods := map[string]*MethodTotal{}
	methodAmounts := map[string]decimal.Decimal{}
	days := map[string]*DailySales{}
	dayRevenue := map[string]decimal.Decimal{}
	items := map[uint]*ItemSales{}
	itemRevenue := map[uint]decimal.Decimal{}

	for _, bill := range bills {
		subtotal = subtotal.Add(dec(bill.Subtotal))
		tax = tax.Add(dec(bill.Tax))
		discount = discount.Add(dec(bill.Discount))
		revenue = revenue.Add(dec(bill.Total))
		credit = credit.Add(dec(bill.CreditAmount))

		for _, p := range bill.PaymentMethods {
			m, ok := methods[p.Type]
			if !ok {
				m = &MethodTotal{Method: p.Type}
				methods[p.Type] = m
			}
			m.Count++
			methodAmounts[p.Type] = methodAmounts[p.Type].Add(dec(p.Amount))
		}

		day := bill.CreatedAt.Format("2006-01-02")
		d, ok := days[day]
		if !ok {
			d = &DailySales{Date: day}
			days[day] = d
		}
		d.Bills++
		dayRevenue[day] = dayRevenue[day].Add(dec(bill.Total))

		for _, order := range bill.Orders {
			for _, item := range order.OrderItems {
				if item.Status != models.OrderItemStatusActive {
					continue
				}
				is, ok := items[item.MenuID]
				if !ok {
					is = &ItemSales{MenuID: item.MenuID, Name: item.Menu.Name}
					items[item.MenuID] = is
				}
				is.Quantity += item.Quantity
				itemRevenue[item.MenuID] = itemRevenue[item.MenuID].Add(dec(item.LinePrice))
			}
		}
	}

	report.Subtotal = money(subtotal)
	report.Tax = money(tax)
	report.Discount = money(discount)
	report.Revenue = money(revenue)
	report.Credit = money(credit)

	for method, m := range methods {
		m.Amount = money(methodAmounts[method])
		report.ByMethod = append(report.ByMethod, *m)
	}
	sort.Slice(report.ByMethod, func(i, j int) bool {
		return report.ByMethod[i].Method < report.ByMethod[j].Method
	})

	for day, d := range days {
		d.Revenue = money(dayRevenue[day])
		report.ByDay = append(report.ByDay, *d)
	}
	sort.Slice(report.ByDay, func(i, j int) bool {
		return report.ByDay[i].Date < report.ByDay[j].Date
	})

	for id, is := range items {
		is.Revenue = money(itemRevenue[id])
		report.TopItems = append(report.TopItems, *is)
	}
	sort.Slice(report.TopItems, func(i, j int) bool {
		a, b := report.TopItems[i], report.TopItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.MenuID < b.MenuID
	})
	if len(report.TopItems) > topN {
		report.TopItems = report.TopItems[:topN]
	}

	return report, nil
}

type statusCount struct {
	Status string
	Count  int64
}

func (s *ReportService) Dashboard(now time.Time) (*Dashboard, error) {
	dash := &Dashboard{
		Tables:     map[string]int64{},
		OpenOrders: map[string]int64{},
	}

	var tableCounts []statusCount
	if err := s.DB.Model(&models.Table{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&tableCounts).Error; err != nil {
		return nil, err
	}
	for _, c := range tableCounts {
		dash.Tables[c.Status] = c.Count
	}

	var orderCounts []statusCount
	if err := s.DB.Model(&models.Order{}).
		Select("status, count(*) as count").
		Where("billed = ?", false).
		Group("status").
		Scan(&orderCounts).Error; err != nil {
		return nil, err
	}
	for _, c := range orderCounts {
		dash.OpenOrders[c.Status] = c.Count
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var totals []float64
	if err := s.DB.Model(&models.Bill{}).
		Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 0, 1)).
		Pluck("total", &totals).Error; err != nil {
		return nil, err
	}
	revenue := decimal.Zero
	for _, t := range totals {
		revenue = revenue.Add(dec(t))
	}
	dash.TodayBills = len(totals)
	dash.TodayRevenue = money(revenue)

	if err := s.DB.Model(&models.StockItem{}).
		Where("quantity <= threshold").
		Count(&dash.LowStockCount).Error; err != nil {
		return nil, err
	}
	return dash, nil
}

// BudgetSummary compares each category's budget for month ("2006-01") with what
// was spent. Categories with spending but no budget are listed with a zero budget.
func (s *ReportService) BudgetSummary(month string) (*BudgetSummary, error) {
	start, err := time.ParseInLocation("2006-01", month, time.Local)
	if err != nil {
		return nil, validationf("month must be formatted YYYY-MM")
	}

	var budgets []models.Budget
	if err := s.DB.Where("month = ?", month).Find(&budgets).Error; err != nil {
		return nil, err
	}
	var expenses []models.Expense
	if err := s.DB.Where("spent_at >= ? AND spent_at < ?", start, start.AddDate(0, 1, 0)).
		Find(&expenses).Error; err != nil {
		return nil, err
	}

	budgetBy := map[string]decimal.Decimal{}
	spentBy := map[string]decimal.Decimal{}
	for _, b := range budgets {
		budgetBy[b.Category] = dec(b.Amount)
	}
	for _, e := range expenses {
		spentBy[e.Category] = spentBy[e.Category].Add(dec(e.Amount))
	}

	categories := make([]string, 0, len(budgetBy)+len(spentBy))
	for c := range budgetBy {
		categories = append(categories, c)
	}
	for c := range spentBy {
		if _, ok := budgetBy[c]; !ok {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	summary := &BudgetSummary{Month: month, Categories: []BudgetLine{}}
	totalBudget, totalSpent := decimal.Zero, decimal.Zero
	for _, c := range categories {
		budget, spent := budgetBy[c], spentBy[c]
		totalBudget = totalBudget.Add(budget)
		totalSpent = totalSpent.Add(spent)
		summary.Categories = append(summary.Categories, BudgetLine{
			Category:   c,
			Budget:     money(budget),
			Spent:      money(spent),
			Remaining:  money(budget.Sub(spent)),
			OverBudget: spent.GreaterThan(budget),
		})
	}
	summary.TotalBudget = money(totalBudget)
	summary.TotalSpent = money(totalSpent)
	return summary, nil
}
