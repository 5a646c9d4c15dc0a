package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB       *gorm.DB
	TokenTTL time.Duration
}

func NewUserController(db *gorm.DB, tokenTTL time.Duration) *UserController {
	return &UserController{DB: db, TokenTTL: tokenTTL}
}

// CreateUser registers a staff account (admin only).
func (uc *UserController) CreateUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role := strings.ToLower(req.Role)
	if !models.IsValidRole(role) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("role must be one of admin, manager, cashier, waiter, chef"))
		return
	}

	var existing int64
	if err := uc.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		respondDBError(c, "checking user email", err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("email is already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondDBError(c, "hashing password", err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		respondDBError(c, "creating user", err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered", user)
}

// Login user -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role, uc.TokenTTL)
	if err != nil {
		respondDBError(c, "generating token", err)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": strings.ToLower(user.Role),
	})
}

// Logout revokes the presented token until it would have expired anyway.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString("token")
	claimsValue, _ := c.Get("claims")
	claims, ok := claimsValue.(*utils.CustomClaims)
	if token == "" || !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("not logged in"))
		return
	}

	expiresAt := time.Now().Add(uc.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)

	utils.InfoLogger.Printf("User %d logged out", claims.UserID)
	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, *userID).Error; err != nil {
		respondLookupError(c, "user", *userID, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := uc.DB.Order("id asc").Find(&users).Error; err != nil {
		respondDBError(c, "listing users", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if me := currentUserID(c); me != nil && *me == id {
		utils.RespondError(c, http.StatusBadRequest, errors.New("you cannot delete your own account"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondLookupError(c, "user", id, err)
		return
	}
	if err := uc.DB.Delete(&user).Error; err != nil {
		respondDBError(c, "deleting user", err)
		return
	}

	utils.InfoLogger.Printf("User %d (%s) deleted", user.ID, user.Email)
	utils.RespondJSON(c, http.StatusOK, "User deleted", gin.H{"id": user.ID})
}
