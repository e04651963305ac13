// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"laundrolink-server/store"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HomeHandler lists providers sorted by ?sort=date|rating|alphabetical.
func (h *Handler) HomeHandler(c echo.Context) error {
	logger := c.Logger()

	sortBy := c.QueryParam("sort")
	switch sortBy {
	case store.SortByRating, store.SortAlphabetically:
	default:
		sortBy = store.SortByDate
	}

	providers, err := h.Store.ListProviders(c.Request().Context(), sortBy)
	if err != nil {
		logger.Errorf("Failed to list providers: %v", err)
		return echo.ErrInternalServerError
	}

	return c.Render(http.StatusOK, "index", IndexPage{
		Page:      h.page(c),
		Providers: providers,
		SortBy:    sortBy,
	})
}

// HealthHandler reports whether the database answers.
func (h *Handler) HealthHandler(c echo.Context) error {
	if err := h.Store.Gateway().Ping(c.Request().Context()); err != nil {
		c.Logger().Errorf("Health check failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
