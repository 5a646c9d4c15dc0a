package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/realtime"
	"github.com/yeremiapane/restaurant-pos/services"
	"gorm.io/gorm"
)

// SetupRouter wires services, controllers and middlewares. The rate limiter is
// returned so main can evict idle clients.
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *middlewares.RateLimiter) {
	r := gin.New()
	r.Use(gin.Recovery())

	rateLimiter := middlewares.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(rateLimiter.RateLimit())

	stockSvc := services.NewStockService(db)
	orderSvc := services.NewOrderService(db, stockSvc)
	creditSvc := services.NewCreditService(db)
	billingSvc := services.NewBillingService(db, stockSvc, creditSvc, cfg.TaxRate, cfg.PaymentTolerance)
	if cfg.PrintServerURL != "" {
		billingSvc.Printer = services.NewPrintClient(cfg.PrintServerURL)
	}
	reportSvc := services.NewReportService(db)

	userCtrl := controllers.NewUserController(db, cfg.TokenTTL)
	tableCtrl := controllers.NewTableController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db, orderSvc)
	billCtrl := controllers.NewBillController(db, billingSvc)
	customerCtrl := controllers.NewCustomerController(db, creditSvc)
	stockCtrl := controllers.NewStockController(db, stockSvc)
	expenseCtrl := controllers.NewExpenseController(db)
	reportCtrl := controllers.NewReportController(reportSvc)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)
	r.POST("/logout", middlewares.AuthMiddleware(), userCtrl.Logout)

	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), controllers.WebSocketHandler(realtime.Default()))

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())

	managers := middlewares.RequireRoles(models.RoleManager)
	cashiers := middlewares.RequireRoles(models.RoleManager, models.RoleCashier)
	floor := middlewares.RequireRoles(models.RoleManager, models.RoleCashier, models.RoleWaiter)
	kitchen := middlewares.RequireRoles(models.RoleManager, models.RoleChef)
	statusUpdaters := middlewares.RequireRoles(models.RoleManager, models.RoleChef, models.RoleWaiter)
	adminOnly := middlewares.RequireRoles()

	admin.GET("/profile", userCtrl.GetProfile)

	users := admin.Group("/users", adminOnly)
	{
		users.GET("", userCtrl.GetAllUsers)
		users.POST("", userCtrl.CreateUser)
		users.DELETE("/:user_id", userCtrl.DeleteUser)
	}

	tables := admin.Group("/tables")
	{
		tables.GET("", tableCtrl.GetAllTables)
		tables.GET("/:table_id", tableCtrl.GetTableByID)
		tables.POST("", managers, tableCtrl.CreateTable)
		tables.PUT("/:table_id", managers, tableCtrl.UpdateTable)
		tables.DELETE("/:table_id", managers, tableCtrl.DeleteTable)
		tables.GET("/:table_id/bill-preview", cashiers, billCtrl.PreviewBill)
	}

	categories := admin.Group("/categories")
	{
		categories.GET("", categoryCtrl.GetAllCategories)
		categories.GET("/:cat_id", categoryCtrl.GetCategoryByID)
		categories.POST("", managers, categoryCtrl.CreateCategory)
		categories.PUT("/:cat_id", managers, categoryCtrl.UpdateCategory)
		categories.DELETE("/:cat_id", managers, categoryCtrl.DeleteCategory)
	}

	menus := admin.Group("/menus")
	{
		menus.GET("", menuCtrl.GetAllMenus)
		menus.GET("/:menu_id", menuCtrl.GetMenuByID)
		menus.POST("", managers, menuCtrl.CreateMenu)
		menus.PUT("/:menu_id", managers, menuCtrl.UpdateMenu)
		menus.DELETE("/:menu_id", managers, menuCtrl.DeleteMenu)
		menus.POST("/:menu_id/variations", managers, menuCtrl.AddVariation)
		menus.DELETE("/:menu_id/variations/:variation_id", managers, menuCtrl.DeleteVariation)
		menus.POST("/:menu_id/add-ons", managers, menuCtrl.AddAddOn)
		menus.DELETE("/:menu_id/add-ons/:add_on_id", managers, menuCtrl.DeleteAddOn)
		menus.PUT("/:menu_id/ingredients", managers, menuCtrl.SetIngredient)
		menus.DELETE("/:menu_id/ingredients/:ingredient_id", managers, menuCtrl.DeleteIngredient)
	}

	orders := admin.Group("/orders")
	{
		orders.GET("", orderCtrl.GetAllOrders)
		orders.GET("/kitchen", orderCtrl.GetKitchenOrders)
		orders.GET("/:order_id", orderCtrl.GetOrderByID)
		orders.POST("", floor, orderCtrl.CreateOrder)
		orders.PUT("/:order_id/status", statusUpdaters, orderCtrl.UpdateOrderStatus)
		orders.DELETE("/:order_id/items/:item_id", floor, orderCtrl.CancelOrderItem)
		orders.DELETE("/:order_id", floor, orderCtrl.DeleteOrder)
	}

	bills := admin.Group("/bills", cashiers)
	{
		bills.GET("", billCtrl.GetAllBills)
		bills.POST("", billCtrl.CreateBill)
		bills.GET("/:bill_id", billCtrl.GetBillByID)
		bills.POST("/:bill_id/print", billCtrl.PrintBill)
	}

	customers := admin.Group("/customers", cashiers)
	{
		customers.GET("", customerCtrl.GetAllCustomers)
		customers.POST("", customerCtrl.CreateCustomer)
		customers.GET("/:customer_id", customerCtrl.GetCustomerByID)
		customers.PUT("/:customer_id", customerCtrl.UpdateCustomer)
		customers.DELETE("/:customer_id", managers, customerCtrl.DeleteCustomer)
		customers.POST("/:customer_id/payments", customerCtrl.RecordPayment)
		customers.POST("/:customer_id/credits", managers, customerCtrl.GrantCredit)
		customers.GET("/:customer_id/ledger", customerCtrl.GetLedger)
	}

	stock := admin.Group("/stock", kitchen)
	{
		stock.GET("", stockCtrl.GetAllStock)
		stock.GET("/low", stockCtrl.GetLowStock)
		stock.GET("/:stock_id", stockCtrl.GetStockByID)
		stock.GET("/:stock_id/movements", stockCtrl.GetMovements)
		stock.POST("", managers, stockCtrl.CreateStock)
		stock.PUT("/:stock_id", managers, stockCtrl.UpdateStock)
		stock.POST("/:stock_id/restock", stockCtrl.Restock)
	}

	expenses := admin.Group("/expenses", managers)
	{
		expenses.GET("", expenseCtrl.GetAllExpenses)
		expenses.POST("", expenseCtrl.CreateExpense)
		expenses.GET("/:expense_id", expenseCtrl.GetExpenseByID)
		expenses.PUT("/:expense_id", expenseCtrl.UpdateExpense)
		expenses.DELETE("/:expense_id", expenseCtrl.DeleteExpense)
	}

	budgets := admin.Group("/budgets", managers)
	{
		budgets.GET("", expenseCtrl.GetBudgets)
		budgets.PUT("", expenseCtrl.UpsertBudget)
		budgets.DELETE("/:budget_id", expenseCtrl.DeleteBudget)
		budgets.GET("/summary", reportCtrl.GetBudgetSummary)
	}

	reports := admin.Group("/reports")
	{
		reports.GET("/sales", managers, reportCtrl.GetSalesReport)
		reports.GET("/dashboard", cashiers, reportCtrl.GetDashboard)
	}

	return r, rateLimiter
}
