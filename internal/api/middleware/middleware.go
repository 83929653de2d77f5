package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/metrics"
)

// Setup は共通ミドルウェアを登録する
func Setup(e *echo.Echo, m *metrics.Metrics) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(RequestLogger())
	if m != nil {
		e.Use(PrometheusMiddleware(m))
	}
}
