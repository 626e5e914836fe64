package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/metrics"
)

// RequestLog writes one structured line per request and records the HTTP
// metrics.  It must run after echo's RequestID middleware so the id is
// available on the response header.
func RequestLog(log *slog.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo's error handler write the response so the status is known
				c.Error(err)
			}
			d := time.Since(start)
			req, res := c.Request(), c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(req.Method, route, res.Status, d)

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route", route,
				"status", res.Status,
				"duration_ms", d.Milliseconds(),
				"bytes", res.Size,
				"remote", c.RealIP(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"user", subject(c),
			}
			switch {
			case res.Status >= 500:
				log.ErrorContext(req.Context(), "http.request", attrs...)
			case res.Status >= 400:
				log.WarnContext(req.Context(), "http.request", attrs...)
			default:
				log.InfoContext(req.Context(), "http.request", attrs...)
			}
			return nil
		}
	}
}
