package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/service"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

type validatorStub struct{}

func (validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleViewer}, nil
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", JWT(validatorStub{}), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, claims.UserID)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", map[string]string{"Authorization": "Basic abc"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer bad"}).Code)

	w := serve(router, http.MethodGet, "/me", map[string]string{"Authorization": "bearer good"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	withRole := func(role models.UserRole) gin.HandlerFunc {
		return func(c *gin.Context) {
			if role != "" {
				c.Set(ContextUserKey, &models.JWTClaims{UserID: "u", Role: role})
			}
			c.Next()
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	cases := []struct {
		role   models.UserRole
		guard  gin.HandlerFunc
		status int
	}{
		{"", Readers(), http.StatusUnauthorized},
		{models.RoleViewer, Readers(), http.StatusOK},
		{models.RoleViewer, Writers(), http.StatusForbidden},
		{models.RoleScheduler, Writers(), http.StatusOK},
		{models.RoleAdmin, Writers(), http.StatusOK},
	}
	for _, tc := range cases {
		router := gin.New()
		router.GET("/x", withRole(tc.role), tc.guard, ok)
		assert.Equal(t, tc.status, serve(router, http.MethodGet, "/x", nil).Code, "role %q", tc.role)
	}
}

func TestMetricsSkipsProbesAndCollapsesUnknownPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/terms/:id/weeks", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/health", nil)
	assert.Zero(t, metrics.Snapshot().RequestsTotal)

	serve(router, http.MethodGet, "/terms/t1/weeks", nil)
	serve(router, http.MethodGet, "/wp-login.php", nil)
	assert.EqualValues(t, 2, metrics.Snapshot().RequestsTotal)
}

func TestResponseMetaCarriesCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/x", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	w := serve(router, http.MethodGet, "/x", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}
