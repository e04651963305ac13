// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"errors"
	"fmt"
	"laundrolink-server/commons"
	"laundrolink-server/models"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "laundrolink_session"
	SessionTTL        = 7 * 24 * time.Hour

	sessionContextKey = "session"
	sessionIssuer     = "laundrolink"
)

// SessionClaims is the payload of the signed session cookie.
type SessionClaims struct {
	ProviderID   uint   `json:"pid"`
	ProviderName string `json:"name"`
	jwt.RegisteredClaims
}

// SessionManager signs and verifies session cookies. Nothing is stored
// server side; a session is valid as long as its signature and expiry are.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(secret string, secure bool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    SessionTTL,
		secure: secure,
		now:    time.Now,
	}
}

func SessionManagerFromEnv() *SessionManager {
	secret := commons.GetEnv("SESSION_SECRET")
	if secret == "" {
		commons.Logger.Warn("SESSION_SECRET is not set, using an insecure default")
		secret = "default_very_secret_key"
	}
	return NewSessionManager(secret, commons.GetEnvBool("SESSION_COOKIE_SECURE", false))
}

// Sign returns a session token for the provider.
func (m *SessionManager) Sign(p *models.Provider) (string, error) {
	now := m.now()
	claims := SessionClaims{
		ProviderID:   p.ID,
		ProviderName: p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    sessionIssuer,
			Subject:   fmt.Sprint(p.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ProviderID == 0 {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// Issue starts a session for p on the response.
func (m *SessionManager) Issue(c echo.Context, p *models.Provider) error {
	tokenString, err := m.Sign(p)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    tokenString,
		Path:     "/",
		Expires:  m.now().Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoadSession verifies the session cookie and stores its claims on the
// context. Invalid cookies are dropped and the request continues anonymous.
func (m *SessionManager) LoadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		claims, err := m.Parse(cookie.Value)
		if err != nil {
			c.Logger().Debug("Ignoring invalid session cookie: ", err)
			m.Clear(c)
			return next(c)
		}

		c.Set(sessionContextKey, claims)
		return next(c)
	}
}

func GetSession(c echo.Context) (*SessionClaims, bool) {
	claims, ok := c.Get(sessionContextKey).(*SessionClaims)
	return claims, ok && claims != nil
}

func SessionProviderID(c echo.Context) (uint, bool) {
	claims, ok := GetSession(c)
	if !ok {
		return 0, false
	}
	return claims.ProviderID, true
}
