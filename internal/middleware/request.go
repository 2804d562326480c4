package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/pkg/logging"
	"github.com/anonto42/pingup/backend/pkg/metrics"
)

// RequestLogger attaches a request-scoped logger and records one log line and metric per request.
// It must run after echo's RequestID middleware.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), requestID)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			elapsed := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordRequest(req.Method, route, status, elapsed)

			event := logging.Ctx(c.Request().Context()).Info()
			if status >= 500 {
				event = logging.Ctx(c.Request().Context()).Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", elapsed).
				Msg("request")
			return nil
		}
	}
}
