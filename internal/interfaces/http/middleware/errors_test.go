package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tmpl, err := view.Load()
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(RequestID(), ErrorHandler(view.NewRenderer(nil), zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	})
	router.GET("/forbidden", func(c *gin.Context) {
		_ = c.Error(shared.ErrForbidden)
	})
	router.GET("/written", func(c *gin.Context) {
		c.String(http.StatusTeapot, "already")
		_ = c.Error(errors.New("late"))
	})

	t.Run("internal errors are generic", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
		assert.Contains(t, w.Body.String(), "An unexpected error occurred")
	})

	t.Run("domain errors keep their status", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/forbidden", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("written responses are left alone", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "already", w.Body.String())
	})
}
