// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"laundrolink-server/commons"
	"laundrolink-server/metrics"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// AuthRateLimiter limits credential and reset attempts per client IP.
// AUTH_RATE_LIMIT is in requests per second.
func AuthRateLimiter() echo.MiddlewareFunc {
	limit, err := strconv.ParseFloat(commons.GetEnv("AUTH_RATE_LIMIT", "1"), 64)
	if err != nil || limit <= 0 {
		commons.Logger.Warnf("Invalid AUTH_RATE_LIMIT, using 1 request per second")
		limit = 1
	}
	return NewAuthRateLimiter(rate.Limit(limit), 5)
}

func NewAuthRateLimiter(limit rate.Limit, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimiterRejections.WithLabelValues(c.Path()).Inc()
			c.Logger().Warnf("Rate limit exceeded for %s on %s", identifier, c.Path())
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, please wait a moment and try again.")
		},
	})
}
