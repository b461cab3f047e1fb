package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewarePropagatesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, Value(c)+"|"+FromContext(c.Request.Context()))
	})

	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerKey, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123|abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(headerKey))

	req, _ = http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerKey, strings.Repeat("x", maxIDLength+1))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	generated := w.Header().Get(headerKey)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
}
