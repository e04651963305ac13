// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"laundrolink-server/db"
	"laundrolink-server/middlewares"
	"laundrolink-server/models"
	"laundrolink-server/notifications"
	"laundrolink-server/passwordcheck"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (h *Handler) ForgotPasswordPageHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "forgot_password", ForgotPasswordPage{Page: h.page(c)})
}

// ForgotPasswordHandler issues a reset token when the phone is registered.
// The page looks the same either way unless the link is shown inline.
func (h *Handler) ForgotPasswordHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()
	page := ForgotPasswordPage{Submitted: true}

	provider, err := h.findProviderByForm(c)
	switch {
	case errors.Is(err, models.ErrNotFound):
		logger.Debugf("Password reset requested for unknown phone %s", maskPhone(strings.TrimSpace(c.FormValue("phone"))))
	case err != nil:
		logger.Errorf("Failed to find provider: %v", err)
		return echo.ErrInternalServerError
	default:
		raw, err := h.Tokens.IssueResetToken(ctx, provider.ID)
		if err != nil {
			logger.Errorf("Failed to issue reset token: %v", err)
			return echo.ErrInternalServerError
		}

		link := h.externalURL(c, "/reset-password/"+raw)
		inline, err := notifications.DispatchNotification(notifications.ResetLink, h.Config.ResetLinkProvider, notifications.NotificationData{
			ProviderID:   provider.ID,
			ProviderName: provider.Name,
			Phone:        provider.Phone,
			Link:         link,
		})
		if err != nil {
			logger.Errorf("Failed to deliver reset link: %v", err)
			return echo.ErrInternalServerError
		}
		if inline {
			page.ResetLink = link
		}
		h.emit(c, models.EventPasswordResetRequested, provider.ID, nil)
	}

	page.Page = h.page(c)
	return c.Render(http.StatusOK, "forgot_password", page)
}

func (h *Handler) ResetPasswordPageHandler(c echo.Context) error {
	logger := c.Logger()
	token := c.Param("token")

	if _, err := h.Tokens.LookupResetToken(c.Request().Context(), token); err != nil {
		if errors.Is(err, models.ErrInvalidOrExpired) {
			return flashRedirect(c, middlewares.FlashError, "Invalid or expired reset link.", "/forgot-password")
		}
		logger.Errorf("Failed to look up reset token: %v", err)
		return echo.ErrInternalServerError
	}

	return c.Render(http.StatusOK, "reset_password", ResetPasswordPage{Page: h.page(c), Token: token})
}

// ResetPasswordHandler updates the password and consumes the token in one
// transaction.
func (h *Handler) ResetPasswordHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()
	token := c.Param("token")

	invalid := func() error {
		return flashRedirect(c, middlewares.FlashError, "Invalid or expired reset link.", "/forgot-password")
	}

	if _, err := h.Tokens.LookupResetToken(ctx, token); err != nil {
		if errors.Is(err, models.ErrInvalidOrExpired) {
			return invalid()
		}
		logger.Errorf("Failed to look up reset token: %v", err)
		return echo.ErrInternalServerError
	}

	newPassword := c.FormValue("new_password")
	err := passwordcheck.ValidateMatch(newPassword, c.FormValue("confirm_password"))
	if err == nil {
		err = passwordcheck.ValidatePassword(ctx, newPassword)
	}
	if err != nil {
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			logger.Errorf("Password validation failed: %v", err)
			return echo.ErrInternalServerError
		}
		middlewares.AddFlash(c, middlewares.FlashError, verr.Message)
		return c.Render(http.StatusOK, "reset_password", ResetPasswordPage{Page: h.page(c), Token: token})
	}

	passwordHash, err := h.Crypto.HashPassword(newPassword)
	if err != nil {
		logger.Errorf("Failed to hash password: %v", err)
		return echo.ErrInternalServerError
	}

	providerID, err := h.Tokens.ConsumeResetToken(ctx, token, func(tx db.Gateway, providerID uint) error {
		return h.Store.WithGateway(tx).UpdatePassword(ctx, providerID, passwordHash)
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidOrExpired) {
			return invalid()
		}
		logger.Errorf("Failed to reset password: %v", err)
		return echo.ErrInternalServerError
	}

	h.emit(c, models.EventPasswordResetCompleted, providerID, nil)
	logger.Infof("Password reset completed for provider %d", providerID)
	return flashRedirect(c, middlewares.FlashSuccess, "Password updated successfully! You can now log in.", "/login")
}
