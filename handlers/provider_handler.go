// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"laundrolink-server/middlewares"
	"laundrolink-server/models"
	"laundrolink-server/passwordcheck"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (h *Handler) findProvider(c echo.Context) (*models.Provider, error) {
	id, err := providerIDParam(c)
	if err != nil {
		return nil, err
	}

	provider, err := h.Store.FindProviderByID(c.Request().Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Provider not found")
	}
	if err != nil {
		c.Logger().Errorf("Failed to find provider %d: %v", id, err)
		return nil, echo.ErrInternalServerError
	}
	return provider, nil
}

// DashboardHandler shows the owner's profile and every feedback entry.
// Ownership is checked by middlewares.RequireOwner.
func (h *Handler) DashboardHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	provider, err := h.findProvider(c)
	if err != nil {
		return err
	}

	feedbacks, err := h.Store.ListRatingsForProvider(ctx, provider.ID, 0)
	if err != nil {
		logger.Errorf("Failed to list ratings: %v", err)
		return echo.ErrInternalServerError
	}

	avg, count, err := h.Store.AverageAndCount(ctx, provider.ID)
	if err != nil {
		logger.Errorf("Failed to aggregate ratings: %v", err)
		return echo.ErrInternalServerError
	}

	return c.Render(http.StatusOK, "owner_dashboard", DashboardPage{
		Page:       h.page(c),
		Provider:   provider,
		Feedbacks:  feedbacks,
		AvgRating:  avg,
		NumReviews: count,
	})
}

// UpdateProviderHandler saves the dashboard form. A blank password keeps the
// current one and a missing upload keeps the current picture.
func (h *Handler) UpdateProviderHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	provider, err := h.findProvider(c)
	if err != nil {
		return err
	}
	back := dashboardURL(provider.ID)

	form, err := bindProviderForm(c)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return flashRedirect(c, middlewares.FlashError, verr.Message, back)
		}
		return err
	}

	if strings.TrimSpace(form.Password) != "" {
		if err := passwordcheck.ValidatePassword(ctx, form.Password); err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				return flashRedirect(c, middlewares.FlashError, verr.Message, back)
			}
			logger.Errorf("Password validation failed: %v", err)
			return echo.ErrInternalServerError
		}
		if provider.Password, err = h.Crypto.HashPassword(form.Password); err != nil {
			logger.Errorf("Failed to hash password: %v", err)
			return echo.ErrInternalServerError
		}
	}

	profilePic, err := h.saveUpload(c, form.Name)
	if err != nil {
		logger.Errorf("Failed to store profile picture: %v", err)
		return echo.ErrInternalServerError
	}
	if profilePic != "" {
		provider.ProfilePic = profilePic
	}

	nameChanged := provider.Name != form.Name
	provider.Name = form.Name
	provider.CountryCode = form.CountryCode
	provider.Area = form.Area
	provider.PricePerKg = form.PricePerKg
	provider.DeliveryFee = form.DeliveryFee
	provider.Services = form.Services
	provider.Phone = form.Phone
	provider.Description = form.Description

	if err := h.Store.UpdateProvider(ctx, provider); err != nil {
		if errors.Is(err, models.ErrDuplicatePhone) {
			return flashRedirect(c, middlewares.FlashError, "This phone number is already registered.", back)
		}
		logger.Errorf("Failed to update provider %d: %v", provider.ID, err)
		return echo.ErrInternalServerError
	}

	if nameChanged {
		if err := h.Sessions.Issue(c, provider); err != nil {
			logger.Errorf("Failed to refresh session: %v", err)
		}
	}

	return flashRedirect(c, middlewares.FlashSuccess, "Details updated successfully!", back)
}

// ServicePageHandler is the public profile with the latest review.
func (h *Handler) ServicePageHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	provider, err := h.findProvider(c)
	if err != nil {
		return err
	}

	latest, err := h.Store.ListRatingsForProvider(ctx, provider.ID, 1)
	if err != nil {
		logger.Errorf("Failed to list ratings: %v", err)
		return echo.ErrInternalServerError
	}

	avg, count, err := h.Store.AverageAndCount(ctx, provider.ID)
	if err != nil {
		logger.Errorf("Failed to aggregate ratings: %v", err)
		return echo.ErrInternalServerError
	}

	return c.Render(http.StatusOK, "service_page", ServicePage{
		Page:       h.page(c),
		Provider:   provider,
		Feedbacks:  latest,
		AvgRating:  avg,
		NumReviews: count,
	})
}

// RateServiceHandler is the leave-a-rating shortcut on the public profile.
func (h *Handler) RateServiceHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	provider, err := h.findProvider(c)
	if err != nil {
		return err
	}
	back := serviceURL(provider.ID)

	rating, err := bindRating(c, provider.ID)
	if err == nil {
		err = h.Store.CreateRating(ctx, rating)
	}
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return flashRedirect(c, middlewares.FlashError, verr.Message, back)
		}
		logger.Errorf("Failed to create rating: %v", err)
		return echo.ErrInternalServerError
	}

	h.emitRating(c, rating, "service_page")
	return flashRedirect(c, middlewares.FlashSuccess, "Thank you for your feedback!", back)
}

func (h *Handler) AllReviewsHandler(c echo.Context) error {
	provider, err := h.findProvider(c)
	if err != nil {
		return err
	}

	feedbacks, err := h.Store.ListRatingsForProvider(c.Request().Context(), provider.ID, 0)
	if err != nil {
		c.Logger().Errorf("Failed to list ratings: %v", err)
		return echo.ErrInternalServerError
	}

	return c.Render(http.StatusOK, "all_reviews", ReviewsPage{
		Page:      h.page(c),
		Provider:  provider,
		Feedbacks: feedbacks,
	})
}

func bindRating(c echo.Context, providerID uint) (*models.Rating, error) {
	score, err := parseScore(c.FormValue("rating"))
	if err != nil {
		return nil, err
	}
	return &models.Rating{
		ProviderID:   providerID,
		CustomerName: c.FormValue("customer_name"),
		Score:        score,
		Comment:      strings.TrimSpace(c.FormValue("comment")),
	}, nil
}

func (h *Handler) emitRating(c echo.Context, r *models.Rating, source string) {
	h.emit(c, models.EventRatingCreated, r.ProviderID, map[string]any{
		"rating_id":     r.ID,
		"rating":        r.Score,
		"customer_name": r.CustomerName,
		"source":        source,
	})
}
