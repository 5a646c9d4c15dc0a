package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.MenuCategory
	if err := mcc.DB.Order("name asc").Find(&categories).Error; err != nil {
		respondDBError(c, "listing categories", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing int64
	if err := mcc.DB.Model(&models.MenuCategory{}).Where("name = ?", body.Name).Count(&existing).Error; err != nil {
		respondDBError(c, "checking category name", err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("category already exists"))
		return
	}

	category := models.MenuCategory{Name: body.Name}
	if err := mcc.DB.Create(&category).Error; err != nil {
		respondDBError(c, "creating category", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (mcc *MenuCategoryController) GetCategoryByID(c *gin.Context) {
	id, ok := paramID(c, "cat_id")
	if !ok {
		return
	}
	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		respondLookupError(c, "category", id, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category detail", category)
}

func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "cat_id")
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		respondLookupError(c, "category", id, err)
		return
	}
	category.Name = body.Name
	if err := mcc.DB.Save(&category).Error; err != nil {
		respondDBError(c, "updating category", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory refuses while menus still reference the category.
func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "cat_id")
	if !ok {
		return
	}

	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		respondLookupError(c, "category", id, err)
		return
	}
	var menus int64
	if err := mcc.DB.Model(&models.Menu{}).Where("category_id = ?", id).Count(&menus).Error; err != nil {
		respondDBError(c, "counting category menus", err)
		return
	}
	if menus > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("category still has menus"))
		return
	}

	if err := mcc.DB.Delete(&category).Error; err != nil {
		respondDBError(c, "deleting category", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": id})
}
