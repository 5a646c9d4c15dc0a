package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("role")})
	})
	r.GET("/", handlers...)
	return r
}

func doGet(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware())

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer not-a-jwt").Code)

	token, err := utils.GenerateToken(7, models.RoleCashier, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+token).Code)

	utils.BlacklistToken(token, time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+token).Code)
}

func TestRequireRoles(t *testing.T) {
	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set("role", role) }
	}

	r := newEngine(withRole(models.RoleWaiter), RequireRoles(models.RoleCashier))
	assert.Equal(t, http.StatusForbidden, doGet(r, "").Code)

	r = newEngine(withRole(models.RoleCashier), RequireRoles(models.RoleCashier))
	assert.Equal(t, http.StatusOK, doGet(r, "").Code)

	r = newEngine(withRole(models.RoleAdmin), RequireRoles(models.RoleChef))
	assert.Equal(t, http.StatusOK, doGet(r, "").Code)

	r = newEngine(RequireRoles(models.RoleChef))
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := newEngine(rl.RateLimit())

	assert.Equal(t, http.StatusOK, doGet(r, "").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "").Code)

	assert.Equal(t, 1, rl.Cleanup(0))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddlewares("http://pos.local"))
	r.OPTIONS("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodOptions, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://pos.local", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", WebSocketAuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("role"))
	})

	req, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := utils.GenerateToken(3, models.RoleChef, time.Hour)
	require.NoError(t, err)
	req, _ = http.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleChef, w.Body.String())
}
