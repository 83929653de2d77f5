package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsEcho() *echo.Echo {
	e := echo.New()
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	}, MetricsBasicAuth())
	return e
}

func TestMetricsBasicAuth(t *testing.T) {
	t.Run("認証未設定ならパススルー", func(t *testing.T) {
		e := newMetricsEcho()

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("認証設定時は未認証を拒否", func(t *testing.T) {
		t.Setenv("METRICS_USER", "ops")
		t.Setenv("METRICS_PASSWORD", "secret")
		e := newMetricsEcho()

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("正しい資格情報なら許可", func(t *testing.T) {
		t.Setenv("METRICS_USER", "ops")
		t.Setenv("METRICS_PASSWORD", "secret")
		e := newMetricsEcho()

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.SetBasicAuth("ops", "secret")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "metrics", rec.Body.String())
	})
}
