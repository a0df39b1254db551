package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"effectif_back_end/internal/models"
	"effectif_back_end/internal/utils"
)

func protectedRouter(adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthRequired()}
	if adminOnly {
		handlers = append(handlers, RequireAdmin)
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString("user_id"),
			"is_admin": c.GetBool("is_admin"),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")
	r := protectedRouter(false)

	t.Run("token valide", func(t *testing.T) {
		token, err := utils.GenerateJWT(models.Account{ID: "u1", Email: "jean@exemple.fr"}, false)
		require.NoError(t, err)

		w := get(r, "Bearer "+token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
		assert.Contains(t, w.Body.String(), `"is_admin":false`)
	})

	t.Run("token manquant", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	})

	t.Run("format invalide", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "Basic abc").Code)
	})

	t.Run("mauvaise signature", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "u1",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("autre-secret"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+signed).Code)
	})

	t.Run("token expiré", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "u1",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("secret-de-test"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+signed).Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")
	r := protectedRouter(true)

	t.Run("admin accepté", func(t *testing.T) {
		token, err := utils.GenerateJWT(models.Account{ID: "u1"}, true)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, get(r, "Bearer "+token).Code)
	})

	t.Run("non-admin refusé", func(t *testing.T) {
		token, err := utils.GenerateJWT(models.Account{ID: "u2"}, false)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+token).Code)
	})
}
