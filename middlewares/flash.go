// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"

	FlashCookieName = "laundrolink_flash"

	flashContextKey = "flash_pending"
)

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// AddFlash queues a message for the next page rendered for this client,
// which may be the current response or the target of a redirect.
func AddFlash(c echo.Context, category, message string) {
	pending := append(pendingFlashes(c), Flash{Category: category, Message: message})
	c.Set(flashContextKey, pending)
	writeFlashCookie(c, pending)
}

// Flashes returns and clears every message queued for this client.
func Flashes(c echo.Context) []Flash {
	var flashes []Flash
	if cookie, err := c.Cookie(FlashCookieName); err == nil && cookie.Value != "" {
		flashes = append(flashes, decodeFlashes(cookie.Value)...)
	}
	flashes = append(flashes, pendingFlashes(c)...)

	c.Set(flashContextKey, []Flash(nil))
	if len(flashes) > 0 {
		writeFlashCookie(c, nil)
	}
	return flashes
}

func pendingFlashes(c echo.Context) []Flash {
	pending, _ := c.Get(flashContextKey).([]Flash)
	return pending
}

func writeFlashCookie(c echo.Context, flashes []Flash) {
	dropSetCookie(c.Response().Header(), FlashCookieName)

	cookie := &http.Cookie{
		Name:     FlashCookieName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if len(flashes) == 0 {
		cookie.MaxAge = -1
	} else {
		cookie.Value = encodeFlashes(flashes)
		cookie.MaxAge = 300
	}
	c.SetCookie(cookie)
}

// dropSetCookie removes an earlier Set-Cookie for name from this response.
func dropSetCookie(h http.Header, name string) {
	values := h.Values(echo.HeaderSetCookie)
	if len(values) == 0 {
		return
	}
	h.Del(echo.HeaderSetCookie)
	for _, v := range values {
		if !strings.HasPrefix(v, name+"=") {
			h.Add(echo.HeaderSetCookie, v)
		}
	}
}

func encodeFlashes(flashes []Flash) string {
	b, err := json.Marshal(flashes)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeFlashes(value string) []Flash {
	b, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(b, &flashes); err != nil {
		return nil
	}
	return flashes
}
