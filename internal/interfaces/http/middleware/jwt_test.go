package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/afyapos/backend/internal/infrastructure/auth"
	"github.com/afyapos/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-middleware",
		AccessTokenExpiration: time.Hour,
		Issuer:                "afyapos-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role string) string {
	t.Helper()
	token, _, err := svc.GenerateToken(auth.GenerateTokenInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Username: "wanjiku",
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func newAuthTestRouter(svc *auth.JWTService) *gin.Engine {
	engine := gin.New()
	engine.Use(JWTAuthMiddleware(svc))
	engine.GET("/api/v1/sales", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant_id": GetJWTTenantID(c), "role": GetJWTRole(c)})
	})
	engine.POST("/api/v1/edit-requests/:id/approve", RequireManager(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.POST("/api/v1/payments/mpesa/callback", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(t)
	engine := newAuthTestRouter(svc)

	t.Run("rejects a request without a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"not.a.token")
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a non-bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("accepts a valid token and exposes claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, svc, auth.RoleCashier))
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "tenant_id")
	})

	t.Run("skips configured paths", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("skips the gateway callback path", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/mpesa/callback", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireManager(t *testing.T) {
	svc := newTestJWTService(t)
	engine := newAuthTestRouter(svc)

	approve := func(role string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/edit-requests/"+uuid.NewString()+"/approve", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, svc, role))
		engine.ServeHTTP(w, req)
		return w
	}

	t.Run("cashiers cannot approve", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, approve(auth.RoleCashier).Code)
	})

	t.Run("managers can approve", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, approve(auth.RoleManager).Code)
	})

	t.Run("owners can approve", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, approve(auth.RoleOwner).Code)
	})
}
