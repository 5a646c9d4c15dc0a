package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/router"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

// call sends body as JSON and fails the test unless the response code is want.
// The data field is decoded into out when out is not nil.
func (c *client) call(method, path string, body interface{}, want int, out interface{}) apiResponse {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			c.t.Fatalf("marshal %s %s: %v", method, path, err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)

	if w.Code != want {
		c.t.Fatalf("%s %s: want %d, got %d, body=%s", method, path, want, w.Code, w.Body.String())
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		c.t.Fatalf("%s %s: invalid body %s", method, path, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			c.t.Fatalf("%s %s: decoding data: %v", method, path, err)
		}
	}
	return resp
}

func (c *client) login(email, password string) {
	c.t.Helper()
	var data struct {
		Token string `json:"token"`
	}
	c.call(http.MethodPost, "/login", map[string]string{"email": email, "password": password}, http.StatusOK, &data)
	if data.Token == "" {
		c.t.Fatalf("login %s: empty token", email)
	}
	c.token = data.Token
}

func setupApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if _, err := database.SeedAdmin(db, "admin@example.com", "secret123"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	r, _ := router.SetupRouter(db, &config.Config{
		TokenTTL:           time.Hour,
		TaxRate:            10,
		PaymentTolerance:   0.01,
		CORSOrigin:         "*",
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	})
	return r, db
}

type idOnly struct {
	ID uint `json:"id"`
}

// TestEndToEndService walks a table from first order to a settled bill paid
// partly on customer credit, then collects the credit.
func TestEndToEndService(t *testing.T) {
	r, _ := setupApp(t)
	admin := &client{t: t, r: r}

	admin.call(http.MethodGet, "/admin/tables", nil, http.StatusUnauthorized, nil)
	admin.login("admin@example.com", "secret123")

	// staff
	admin.call(http.MethodPost, "/admin/users", map[string]string{
		"name": "Wati", "email": "waiter@example.com", "password": "waiter123", "role": "waiter",
	}, http.StatusCreated, nil)
	admin.call(http.MethodPost, "/admin/users", map[string]string{
		"name": "Chef", "email": "chef@example.com", "password": "chef1234", "role": "chef",
	}, http.StatusCreated, nil)

	// floor and catalog
	var table, category, beef, napkins, menu idOnly
	admin.call(http.MethodPost, "/admin/tables", map[string]interface{}{"number": "A1", "capacity": 4}, http.StatusCreated, &table)
	admin.call(http.MethodPost, "/admin/categories", map[string]string{"name": "Mains"}, http.StatusCreated, &category)
	admin.call(http.MethodPost, "/admin/stock", map[string]interface{}{
		"name": "Beef", "unit": "kg", "quantity": 10, "threshold": 1,
	}, http.StatusCreated, &beef)
	admin.call(http.MethodPost, "/admin/stock", map[string]interface{}{
		"name": "Napkins", "unit": "pcs", "quantity": 100, "threshold": 10, "deduction_type": "manual",
	}, http.StatusCreated, &napkins)
	admin.call(http.MethodPost, "/admin/menus", map[string]interface{}{
		"category_id": category.ID, "name": "Nasi Goreng", "price": 15000,
	}, http.StatusCreated, &menu)
	menuPath := fmt.Sprintf("/admin/menus/%d/ingredients", menu.ID)
	admin.call(http.MethodPut, menuPath, map[string]interface{}{"stock_item_id": beef.ID, "quantity": 0.25}, http.StatusOK, nil)
	admin.call(http.MethodPut, menuPath, map[string]interface{}{"stock_item_id": napkins.ID, "quantity": 2}, http.StatusOK, nil)

	// waiter takes the order
	waiter := &client{t: t, r: r}
	waiter.login("waiter@example.com", "waiter123")
	waiter.call(http.MethodPost, "/admin/tables", map[string]interface{}{"number": "B1"}, http.StatusForbidden, nil)

	var order struct {
		ID          uint    `json:"id"`
		Status      string  `json:"status"`
		TotalAmount float64 `json:"total_amount"`
	}
	waiter.call(http.MethodPost, "/admin/orders", map[string]interface{}{
		"table_id": table.ID,
		"items":    []map[string]interface{}{{"menu_id": menu.ID, "quantity": 2, "notes": "Pedas"}},
	}, http.StatusCreated, &order)
	if order.Status != "pending" || order.TotalAmount != 30000 {
		t.Fatalf("unexpected new order: %+v", order)
	}
	statusPath := fmt.Sprintf("/admin/orders/%d/status", order.ID)

	// kitchen
	waiter.call(http.MethodPut, statusPath, map[string]string{"status": "cooking"}, http.StatusForbidden, nil)
	chef := &client{t: t, r: r}
	chef.login("chef@example.com", "chef1234")
	var kitchen []idOnly
	chef.call(http.MethodGet, "/admin/orders/kitchen", nil, http.StatusOK, &kitchen)
	if len(kitchen) != 1 || kitchen[0].ID != order.ID {
		t.Fatalf("kitchen queue: %+v", kitchen)
	}
	chef.call(http.MethodPut, statusPath, map[string]string{"status": "cooking"}, http.StatusOK, nil)
	chef.call(http.MethodPut, statusPath, map[string]string{"status": "ready"}, http.StatusOK, nil)
	waiter.call(http.MethodPut, statusPath, map[string]string{"status": "served"}, http.StatusOK, nil)

	var stock struct {
		Quantity float64 `json:"quantity"`
	}
	chef.call(http.MethodGet, fmt.Sprintf("/admin/stock/%d", beef.ID), nil, http.StatusOK, &stock)
	if stock.Quantity != 9.5 {
		t.Fatalf("beef after cooking: want 9.5, got %v", stock.Quantity)
	}

	// cashier side: customer, preview, bill
	var customer idOnly
	admin.call(http.MethodPost, "/admin/customers", map[string]string{"name": "Budi", "phone": "08123"}, http.StatusCreated, &customer)

	previewPath := fmt.Sprintf("/admin/tables/%d/bill-preview", table.ID)
	var preview struct {
		OrderCount    int     `json:"order_count"`
		Subtotal      float64 `json:"subtotal"`
		Tax           float64 `json:"tax"`
		Total         float64 `json:"total"`
		AlreadyBilled bool    `json:"already_billed"`
	}
	admin.call(http.MethodGet, previewPath, nil, http.StatusOK, &preview)
	if preview.OrderCount != 1 || preview.Subtotal != 30000 || preview.Tax != 3000 || preview.Total != 33000 {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	var created struct {
		Bill struct {
			ID           uint    `json:"id"`
			BillNumber   string  `json:"bill_number"`
			Total        float64 `json:"total"`
			CreditAmount float64 `json:"credit_amount"`
		} `json:"bill"`
		StockWarnings []string `json:"stock_warnings"`
	}
	admin.call(http.MethodPost, "/admin/bills", map[string]interface{}{
		"table_id":    table.ID,
		"customer_id": customer.ID,
		"payment_methods": []map[string]interface{}{
			{"type": "cash", "amount": 20000},
			{"type": "credit", "amount": 13000},
		},
	}, http.StatusCreated, &created)
	if created.Bill.Total != 33000 || created.Bill.CreditAmount != 13000 || len(created.StockWarnings) != 0 {
		t.Fatalf("unexpected bill: %+v", created)
	}

	admin.call(http.MethodGet, previewPath, nil, http.StatusOK, &preview)
	if !preview.AlreadyBilled || preview.OrderCount != 0 {
		t.Fatalf("preview after billing: %+v", preview)
	}

	var tableState struct {
		Status string `json:"status"`
	}
	admin.call(http.MethodGet, fmt.Sprintf("/admin/tables/%d", table.ID), nil, http.StatusOK, &tableState)
	if tableState.Status != "available" {
		t.Fatalf("table after billing: %s", tableState.Status)
	}

	chef.call(http.MethodGet, fmt.Sprintf("/admin/stock/%d", napkins.ID), nil, http.StatusOK, &stock)
	if stock.Quantity != 96 {
		t.Fatalf("napkins after billing: want 96, got %v", stock.Quantity)
	}

	// credit collection
	customerPath := fmt.Sprintf("/admin/customers/%d", customer.ID)
	admin.call(http.MethodPost, customerPath+"/payments", map[string]interface{}{"amount": 20000}, http.StatusBadRequest, nil)
	var paid struct {
		Customer struct {
			CreditBalance float64 `json:"credit_balance"`
		} `json:"customer"`
	}
	admin.call(http.MethodPost, customerPath+"/payments", map[string]interface{}{"amount": 13000, "method": "card"}, http.StatusOK, &paid)
	if paid.Customer.CreditBalance != 0 {
		t.Fatalf("balance after payment: %v", paid.Customer.CreditBalance)
	}
	var ledger []struct {
		Type string `json:"type"`
	}
	admin.call(http.MethodGet, customerPath+"/ledger", nil, http.StatusOK, &ledger)
	if len(ledger) != 2 || ledger[0].Type != "payment" || ledger[1].Type != "credit" {
		t.Fatalf("unexpected ledger: %+v", ledger)
	}

	var dashboard struct {
		TodayBills   int     `json:"today_bills"`
		TodayRevenue float64 `json:"today_revenue"`
	}
	admin.call(http.MethodGet, "/admin/reports/dashboard", nil, http.StatusOK, &dashboard)
	if dashboard.TodayBills != 1 || dashboard.TodayRevenue != 33000 {
		t.Fatalf("unexpected dashboard: %+v", dashboard)
	}

	// logout revokes the session
	admin.call(http.MethodPost, "/logout", nil, http.StatusOK, nil)
	admin.call(http.MethodGet, "/admin/profile", nil, http.StatusUnauthorized, nil)
}

func TestEnsureAdminPassword(t *testing.T) {
	cfg := &config.Config{AdminPassword: "configured"}
	if ensureAdminPassword(cfg) || cfg.AdminPassword != "configured" {
		t.Fatalf("configured password was replaced: %q", cfg.AdminPassword)
	}

	cfg.AdminPassword = ""
	if !ensureAdminPassword(cfg) {
		t.Fatal("empty password was not generated")
	}
	if len(cfg.AdminPassword) != 12 {
		t.Fatalf("generated password %q, want 12 characters", cfg.AdminPassword)
	}
}
