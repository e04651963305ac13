// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"fmt"
	"laundrolink-server/commons"
	"laundrolink-server/crypto"
	"laundrolink-server/middlewares"
	"laundrolink-server/models"
	"laundrolink-server/notifications"
	"laundrolink-server/rabbitmq"
	"laundrolink-server/store"
	"laundrolink-server/tokens"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Config struct {
	// BaseURL prefixes links sent outside the site. Empty means the
	// request's own scheme and host.
	BaseURL           string
	UploadDir         string
	ReviewCompletion  string
	ResetLinkProvider notifications.NotificationProviders
}

func ConfigFromEnv() Config {
	completion := strings.ToLower(commons.GetEnv("REVIEW_COMPLETION", ReviewCompletionThankYou))
	if completion != ReviewCompletionRedirect {
		completion = ReviewCompletionThankYou
	}
	return Config{
		BaseURL:           strings.TrimRight(commons.GetEnv("BASE_URL"), "/"),
		UploadDir:         commons.GetEnv("UPLOAD_DIR", "static/uploads"),
		ReviewCompletion:  completion,
		ResetLinkProvider: notifications.ProviderFromEnv(),
	}
}

// Handler serves every page. Its collaborators are set once at startup.
type Handler struct {
	Store      *store.Store
	Tokens     *tokens.Manager
	Sessions   *middlewares.SessionManager
	Crypto     *crypto.Crypto
	Publisher  rabbitmq.Publisher
	DeepLinker notifications.DeepLinker
	Config     Config
}

func (h *Handler) page(c echo.Context) Page {
	p := Page{Flashes: middlewares.Flashes(c)}
	if token, ok := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string); ok {
		p.CSRFToken = token
	}
	if session, ok := middlewares.GetSession(c); ok {
		p.Session = session
	}
	return p
}

func (h *Handler) externalURL(c echo.Context, path string) string {
	base := h.Config.BaseURL
	if base == "" {
		base = c.Scheme() + "://" + c.Request().Host
	}
	return base + path
}

func (h *Handler) emit(c echo.Context, eventType string, providerID uint, data map[string]any) {
	rabbitmq.Emit(c.Request().Context(), h.Publisher, models.NewEvent(eventType, providerID, data))
}

func providerIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Provider not found")
	}
	return uint(id), nil
}

func dashboardURL(id uint) string {
	return fmt.Sprintf("/owner_dashboard/%d", id)
}

func serviceURL(id uint) string {
	return fmt.Sprintf("/service/%d", id)
}

// flashRedirect is the standard response to a recoverable form error.
func flashRedirect(c echo.Context, category, message, location string) error {
	middlewares.AddFlash(c, category, message)
	return c.Redirect(http.StatusFound, location)
}
