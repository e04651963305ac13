// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"laundrolink-server/db"
	"laundrolink-server/middlewares"
	"laundrolink-server/models"
	"net/http"

	"github.com/labstack/echo/v4"
)

func reviewLinkInvalid() error {
	return echo.NewHTTPError(http.StatusForbidden, "Review link invalid or expired")
}

// RequestServiceHandler issues a review token and sends the customer to the
// provider's messaging deep link, which carries the review link.
func (h *Handler) RequestServiceHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	id, err := providerIDParam(c)
	if err != nil {
		return flashRedirect(c, middlewares.FlashError, "Laundry service not found", "/")
	}

	provider, err := h.Store.FindProviderByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return flashRedirect(c, middlewares.FlashError, "Laundry service not found", "/")
	}
	if err != nil {
		logger.Errorf("Failed to find provider %d: %v", id, err)
		return echo.ErrInternalServerError
	}

	token, err := h.Tokens.IssueReviewToken(ctx, provider.ID)
	if err != nil {
		logger.Errorf("Failed to issue review token: %v", err)
		return echo.ErrInternalServerError
	}
	h.emit(c, models.EventReviewTokenIssued, provider.ID, nil)

	reviewLink := h.externalURL(c, "/review/"+token)
	return c.Redirect(http.StatusFound, h.DeepLinker.ServiceRequestURL(provider.Phone, provider.Name, reviewLink))
}

func (h *Handler) LeaveReviewPageHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()
	token := c.Param("token")

	rec, err := h.Tokens.LookupReviewToken(ctx, token)
	if errors.Is(err, models.ErrInvalidOrExpired) {
		return reviewLinkInvalid()
	}
	if err != nil {
		logger.Errorf("Failed to look up review token: %v", err)
		return echo.ErrInternalServerError
	}

	page := LeaveReviewPage{Page: h.page(c), Token: token}
	provider, err := h.Store.FindProviderByID(ctx, rec.ProviderID)
	switch {
	case err == nil:
		page.ProviderName = provider.Name
	case !errors.Is(err, models.ErrNotFound):
		logger.Errorf("Failed to find provider %d for review token: %v", rec.ProviderID, err)
	}
	return c.Render(http.StatusOK, "leave_review", page)
}

// LeaveReviewHandler stores the rating and consumes the token in one
// transaction, so a link yields at most one rating.
func (h *Handler) LeaveReviewHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()
	token := c.Param("token")

	if _, err := h.Tokens.LookupReviewToken(ctx, token); err != nil {
		if errors.Is(err, models.ErrInvalidOrExpired) {
			return reviewLinkInvalid()
		}
		logger.Errorf("Failed to look up review token: %v", err)
		return echo.ErrInternalServerError
	}

	rating, err := bindRating(c, 0)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return flashRedirect(c, middlewares.FlashError, verr.Message, "/review/"+token)
		}
		return err
	}

	providerID, err := h.Tokens.ConsumeReviewToken(ctx, token, func(tx db.Gateway, providerID uint) error {
		rating.ProviderID = providerID
		return h.Store.WithGateway(tx).CreateRating(ctx, rating)
	})
	if err != nil {
		var verr *models.ValidationError
		switch {
		case errors.Is(err, models.ErrInvalidOrExpired):
			return reviewLinkInvalid()
		case errors.As(err, &verr):
			return flashRedirect(c, middlewares.FlashError, verr.Message, "/review/"+token)
		default:
			logger.Errorf("Failed to consume review token: %v", err)
			return echo.ErrInternalServerError
		}
	}

	h.emitRating(c, rating, "review_link")

	if h.Config.ReviewCompletion == ReviewCompletionRedirect {
		return flashRedirect(c, middlewares.FlashSuccess, "Thank you for your feedback!", serviceURL(providerID))
	}
	return c.Render(http.StatusOK, "leave_review", LeaveReviewPage{
		Page:         h.page(c),
		ShowThankYou: true,
		RedirectURL:  serviceURL(providerID),
	})
}
