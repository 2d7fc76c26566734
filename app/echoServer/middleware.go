// app/echoServer/middleware.go
package echoServer

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// BearerAuth checks the pre-shared API token. The core never sees
// credentials; anything past this middleware is an authenticated caller.
func BearerAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := strings.TrimSpace(c.Request().Header.Get("Authorization"))
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			got := strings.TrimSpace(h[7:])
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			return next(c)
		}
	}
}

// BorrowRateLimiter throttles the borrow endpoint per client IP.
func BorrowRateLimiter(perMinute int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / 60.0),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "too many requests"})
		},
	})
}
