package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

func (mc *MenuController) preloaded() *gorm.DB {
	return mc.DB.Preload("Category").
		Preload("Variations").
		Preload("AddOns").
		Preload("Ingredients.StockItem")
}

// GetAllMenus supports ?category_id= and ?available=true|false
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	query := mc.preloaded().Order("name asc")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if available := c.Query("available"); available != "" {
		flag, err := strconv.ParseBool(available)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("available must be true or false"))
			return
		}
		query = query.Where("available = ?", flag)
	}

	var menus []models.Menu
	if err := query.Find(&menus).Error; err != nil {
		respondDBError(c, "listing menus", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var menu models.Menu
	if err := mc.preloaded().First(&menu, id).Error; err != nil {
		respondLookupError(c, "menu", id, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

type menuRequest struct {
	CategoryID  uint    `json:"category_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	Description string  `json:"description"`
	Available   *bool   `json:"available"`
}

func (mc *MenuController) categoryExists(c *gin.Context, id uint) bool {
	var category models.MenuCategory
	if err := mc.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("category %d does not exist", id))
			return false
		}
		respondDBError(c, "loading category", err)
		return false
	}
	return true
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !mc.categoryExists(c, req.CategoryID) {
		return
	}

	menu := models.Menu{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Available:   true,
	}
	if err := mc.DB.Omit("Category").Create(&menu).Error; err != nil {
		respondDBError(c, "creating menu", err)
		return
	}
	// available defaults to true in the schema, so false is written explicitly
	if req.Available != nil && !*req.Available {
		if err := mc.DB.Model(&menu).Update("available", false).Error; err != nil {
			respondDBError(c, "updating menu availability", err)
			return
		}
	}

	utils.InfoLogger.Printf("Menu created: %s (%.2f)", menu.Name, menu.Price)
	mc.respondMenu(c, http.StatusCreated, "Menu created", menu.ID)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		respondLookupError(c, "menu", id, err)
		return
	}
	if !mc.categoryExists(c, req.CategoryID) {
		return
	}

	updates := map[string]interface{}{
		"category_id": req.CategoryID,
		"name":        req.Name,
		"price":       req.Price,
		"description": req.Description,
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}
	if err := mc.DB.Model(&menu).Updates(updates).Error; err != nil {
		respondDBError(c, "updating menu", err)
		return
	}
	mc.respondMenu(c, http.StatusOK, "Menu updated", menu.ID)
}

// DeleteMenu refuses menus that appear on orders; mark them unavailable instead.
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		respondLookupError(c, "menu", id, err)
		return
	}

	var used int64
	if err := mc.DB.Model(&models.OrderItem{}).Where("menu_id = ?", id).Count(&used).Error; err != nil {
		respondDBError(c, "counting menu usage", err)
		return
	}
	if used > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("menu has been ordered before, mark it unavailable instead"))
		return
	}

	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.MenuVariation{}, &models.MenuAddOn{}, &models.MenuIngredient{}} {
			if err := tx.Where("menu_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&menu).Error
	})
	if err != nil {
		respondDBError(c, "deleting menu", err)
		return
	}
	utils.InfoLogger.Printf("Menu %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": id})
}

// AddVariation -> POST /menus/:menu_id/variations
func (mc *MenuController) AddVariation(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var req struct {
		Name  string  `json:"name" binding:"required"`
		Price float64 `json:"price" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !mc.menuExists(c, id) {
		return
	}

	variation := models.MenuVariation{MenuID: id, Name: req.Name, Price: req.Price}
	if err := mc.DB.Create(&variation).Error; err != nil {
		respondDBError(c, "creating variation", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Variation added", variation)
}

func (mc *MenuController) DeleteVariation(c *gin.Context) {
	mc.deleteChild(c, "variation_id", &models.MenuVariation{}, "Variation deleted")
}

// AddAddOn -> POST /menus/:menu_id/add-ons
func (mc *MenuController) AddAddOn(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var req struct {
		Name  string  `json:"name" binding:"required"`
		Price float64 `json:"price" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !mc.menuExists(c, id) {
		return
	}

	addOn := models.MenuAddOn{MenuID: id, Name: req.Name, Price: req.Price}
	if err := mc.DB.Create(&addOn).Error; err != nil {
		respondDBError(c, "creating add-on", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Add-on added", addOn)
}

func (mc *MenuController) DeleteAddOn(c *gin.Context) {
	mc.deleteChild(c, "add_on_id", &models.MenuAddOn{}, "Add-on deleted")
}

// SetIngredient links a stock item to a menu, replacing the quantity when the
// link already exists.
func (mc *MenuController) SetIngredient(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var req struct {
		StockItemID uint    `json:"stock_item_id" binding:"required"`
		Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !mc.menuExists(c, id) {
		return
	}
	var item models.StockItem
	if err := mc.DB.First(&item, req.StockItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("stock item %d does not exist", req.StockItemID))
			return
		}
		respondDBError(c, "loading stock item", err)
		return
	}

	var ingredient models.MenuIngredient
	err := mc.DB.Where("menu_id = ? AND stock_item_id = ?", id, req.StockItemID).First(&ingredient).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ingredient = models.MenuIngredient{MenuID: id, StockItemID: req.StockItemID, Quantity: req.Quantity}
		err = mc.DB.Omit("StockItem").Create(&ingredient).Error
	case err == nil:
		ingredient.Quantity = req.Quantity
		err = mc.DB.Model(&ingredient).Update("quantity", req.Quantity).Error
	}
	if err != nil {
		respondDBError(c, "saving ingredient", err)
		return
	}

	ingredient.StockItem = item
	utils.RespondJSON(c, http.StatusOK, "Ingredient saved", ingredient)
}

func (mc *MenuController) DeleteIngredient(c *gin.Context) {
	mc.deleteChild(c, "ingredient_id", &models.MenuIngredient{}, "Ingredient removed")
}

func (mc *MenuController) menuExists(c *gin.Context, id uint) bool {
	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		respondLookupError(c, "menu", id, err)
		return false
	}
	return true
}

// deleteChild removes a variation, add-on or ingredient of the menu in the path.
func (mc *MenuController) deleteChild(c *gin.Context, param string, model interface{}, message string) {
	menuID, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	childID, ok := paramID(c, param)
	if !ok {
		return
	}

	res := mc.DB.Where("id = ? AND menu_id = ?", childID, menuID).Delete(model)
	if res.Error != nil {
		respondDBError(c, "deleting "+param, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("%s %d not found on menu %d", param, childID, menuID))
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{param: childID})
}

func (mc *MenuController) respondMenu(c *gin.Context, code int, message string, id uint) {
	var menu models.Menu
	if err := mc.preloaded().First(&menu, id).Error; err != nil {
		respondDBError(c, "reloading menu", err)
		return
	}
	utils.RespondJSON(c, code, message, menu)
}
