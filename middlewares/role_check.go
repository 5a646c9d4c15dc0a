package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// RequireRoles lets the request through when the caller has one of roles.
// Admins always pass.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles)+1)
	allowed[models.RoleAdmin] = true
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}
		if r, ok := role.(string); !ok || !allowed[r] {
			utils.RespondError(c, http.StatusForbidden, errors.New("you do not have permission to perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}
