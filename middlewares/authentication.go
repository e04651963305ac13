// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"laundrolink-server/models"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// RequireOwner only lets through the provider whose id is in the path
// parameter. Everyone else is sent to the login page.
func RequireOwner(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := c.Logger()

			pathID, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil {
				return echo.ErrNotFound
			}

			sessionID, ok := SessionProviderID(c)
			if !ok || uint64(sessionID) != pathID {
				logger.Warnf("%v: provider %d requested by session provider %d", models.ErrUnauthorized, pathID, sessionID)
				AddFlash(c, FlashError, "Unauthorized access.")
				return c.Redirect(http.StatusFound, "/login")
			}

			return next(c)
		}
	}
}
