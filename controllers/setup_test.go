package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// newRouter returns a test engine whose requests carry the given role and user id,
// standing in for AuthMiddleware.
func newRouter(role string, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("role", role)
		c.Set("user_id", userID)
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "data is %T", response["data"])
	return data
}

func dataList(t *testing.T, response map[string]interface{}) []interface{} {
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "data is %T", response["data"])
	return data
}

type seed struct {
	table  models.Table
	burger models.Menu
	fries  models.Menu
	beef   models.StockItem
}

// seedMenu creates table T1, a burger (100, 0.2kg beef) and fries (50).
func seedMenu(t *testing.T, db *gorm.DB) seed {
	var s seed
	s.table = models.Table{Number: "T1", Capacity: 4, Status: models.TableStatusAvailable}
	require.NoError(t, db.Create(&s.table).Error)

	category := models.MenuCategory{Name: "Mains"}
	require.NoError(t, db.Create(&category).Error)

	s.beef = models.StockItem{Name: "Beef", Unit: "kg", Quantity: 10, Threshold: 1, DeductionType: models.DeductionAutomatic}
	require.NoError(t, db.Create(&s.beef).Error)

	s.burger = models.Menu{CategoryID: category.ID, Name: "Burger", Price: 100, Available: true}
	s.fries = models.Menu{CategoryID: category.ID, Name: "Fries", Price: 50, Available: true}
	require.NoError(t, db.Omit("Category").Create(&s.burger).Error)
	require.NoError(t, db.Omit("Category").Create(&s.fries).Error)
	require.NoError(t, db.Omit("StockItem").Create(&models.MenuIngredient{MenuID: s.burger.ID, StockItemID: s.beef.ID, Quantity: 0.2}).Error)
	return s
}
