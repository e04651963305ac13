// SPDX-License-Identifier: GPL-3.0-only

// Package tokens issues and consumes the single-use review and password reset
// tokens. Expiry is evaluated when a token is looked up; nothing evicts
// expired rows in the background.
package tokens

import (
	"time"

	"laundrolink-server/db"
)

const (
	ReviewTokenTTL = 48 * time.Hour
	ResetTokenTTL  = 5 * time.Minute

	resetSecretBytes = 32
)

// Hasher hashes reset secrets at rest.
type Hasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, encodedHash string) bool
}

// UseFunc performs the side effect of a consumed token on the same
// transaction that deletes it. Returning an error keeps the token.
type UseFunc func(tx db.Gateway, providerID uint) error

type Manager struct {
	gw        db.Gateway
	hasher    Hasher
	now       func() time.Time
	reviewTTL time.Duration
	resetTTL  time.Duration
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithReviewTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.reviewTTL = ttl }
}

func WithResetTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.resetTTL = ttl }
}

func NewManager(gw db.Gateway, hasher Hasher, opts ...Option) *Manager {
	m := &Manager{
		gw:        gw,
		hasher:    hasher,
		now:       func() time.Time { return time.Now().UTC() },
		reviewTTL: ReviewTokenTTL,
		resetTTL:  ResetTokenTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
