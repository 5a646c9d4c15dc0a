package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

var ErrNoPermission = &CustomError{"You do not have permission"}

var errInternal = errors.New("internal server error")

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// respondServiceError maps service errors onto status codes. Unexpected errors
// are logged and answered with a generic message.
func respondServiceError(c *gin.Context, action string, err error) {
	switch {
	case services.IsValidation(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.ErrorLogger.Printf("Error %s: %v", action, err)
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
	}
}

// respondLookupError answers a failed First() on entity.
func respondLookupError(c *gin.Context, entity string, id uint, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("%s %d not found", entity, id))
		return
	}
	utils.ErrorLogger.Printf("Error loading %s %d: %v", entity, id, err)
	utils.RespondError(c, http.StatusInternalServerError, errInternal)
}

func respondDBError(c *gin.Context, action string, err error) {
	utils.ErrorLogger.Printf("Error %s: %v", action, err)
	utils.RespondError(c, http.StatusInternalServerError, errInternal)
}

// paramID parses a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the authenticated user, or nil outside of AuthMiddleware.
func currentUserID(c *gin.Context) *uint {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}
