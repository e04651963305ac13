// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"errors"
	"laundrolink-server/metrics"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics records request counts and latency by route pattern.
func Metrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Path()
		method := c.Request().Method

		metrics.RequestInProgress.WithLabelValues(method, path).Inc()
		defer metrics.RequestInProgress.WithLabelValues(method, path).Dec()

		startTime := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else {
				status = http.StatusInternalServerError
			}
		}

		code := strconv.Itoa(status)
		metrics.RequestCounter.WithLabelValues(code, method, path).Inc()
		metrics.RequestDuration.WithLabelValues(code, method, path).Observe(time.Since(startTime).Seconds())
		return err
	}
}
