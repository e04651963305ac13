// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"laundrolink-server/middlewares"
	"laundrolink-server/models"
	"laundrolink-server/passwordcheck"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

func (h *Handler) RegisterPageHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "register_provider", RegisterPage{Page: h.page(c)})
}

// RegisterHandler creates a provider from the registration form and starts
// its session.
func (h *Handler) RegisterHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	form, err := bindProviderForm(c)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			logger.Warn("Registration rejected: ", verr)
			return flashRedirect(c, middlewares.FlashError, verr.Message, "/register")
		}
		return err
	}

	if form.Password == "" {
		return flashRedirect(c, middlewares.FlashError, "Please choose a password.", "/register")
	}
	if err := passwordcheck.ValidatePassword(ctx, form.Password); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return flashRedirect(c, middlewares.FlashError, verr.Message, "/register")
		}
		logger.Errorf("Password validation failed: %v", err)
		return echo.ErrInternalServerError
	}

	passwordHash, err := h.Crypto.HashPassword(form.Password)
	if err != nil {
		logger.Errorf("Failed to hash password: %v", err)
		return echo.ErrInternalServerError
	}

	profilePic, err := h.saveUpload(c, form.Name)
	if err != nil {
		logger.Errorf("Failed to store profile picture: %v", err)
		return echo.ErrInternalServerError
	}

	provider := &models.Provider{
		Name:        form.Name,
		CountryCode: form.CountryCode,
		Area:        form.Area,
		PricePerKg:  form.PricePerKg,
		DeliveryFee: form.DeliveryFee,
		Services:    form.Services,
		Phone:       form.Phone,
		Password:    passwordHash,
		Description: form.Description,
		ProfilePic:  profilePic,
	}

	if err := h.Store.CreateProvider(ctx, provider); err != nil {
		if profilePic != "" {
			os.Remove(filepath.Join(h.Config.UploadDir, profilePic))
		}
		if errors.Is(err, models.ErrDuplicatePhone) {
			logger.Warnf("Registration with existing phone %s", form.Phone)
			return flashRedirect(c, middlewares.FlashError, "This phone number is already registered.", "/register")
		}
		logger.Errorf("Failed to create provider: %v", err)
		return echo.ErrInternalServerError
	}

	if err := h.Sessions.Issue(c, provider); err != nil {
		logger.Errorf("Failed to start session: %v", err)
		return echo.ErrInternalServerError
	}

	h.emit(c, models.EventProviderRegistered, provider.ID, map[string]any{
		"name":     provider.Name,
		"area":     provider.Area,
		"services": []string(provider.Services),
	})
	logger.Infof("Provider %d registered", provider.ID)

	page := h.page(c)
	page.Session = &middlewares.SessionClaims{ProviderID: provider.ID, ProviderName: provider.Name}
	return c.Render(http.StatusOK, "register_provider", RegisterPage{
		Page:        page,
		ShowSuccess: true,
		RedirectURL: dashboardURL(provider.ID),
	})
}

func (h *Handler) LoginPageHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "login", LoginPage{Page: h.page(c)})
}

// LoginHandler verifies phone and password. Unknown phones and wrong
// passwords get the same message.
func (h *Handler) LoginHandler(c echo.Context) error {
	logger := c.Logger()

	phone := strings.TrimSpace(c.FormValue("phone"))
	password := c.FormValue("password")
	if phone == "" || password == "" {
		return flashRedirect(c, middlewares.FlashError, "Invalid phone number or password.", "/login")
	}

	provider, err := h.findProviderByForm(c)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		logger.Errorf("Failed to find provider: %v", err)
		return echo.ErrInternalServerError
	}

	if provider == nil || !h.Crypto.VerifyPassword(password, provider.Password) {
		logger.Warnf("Failed login for %s", maskPhone(phone))
		return flashRedirect(c, middlewares.FlashError, "Invalid phone number or password.", "/login")
	}

	if err := h.Sessions.Issue(c, provider); err != nil {
		logger.Errorf("Failed to start session: %v", err)
		return echo.ErrInternalServerError
	}

	return flashRedirect(c, middlewares.FlashSuccess, "Logged in successfully!", dashboardURL(provider.ID))
}

func (h *Handler) LogoutHandler(c echo.Context) error {
	h.Sessions.Clear(c)
	return flashRedirect(c, middlewares.FlashInfo, "Logged out successfully.", "/")
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
