// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

// PasswordReset stores only the hash of the raw secret handed to the provider.
// At most one row exists per provider.
type PasswordReset struct {
	ID         uint      `gorm:"primaryKey"`
	ProviderID uint      `gorm:"not null;uniqueIndex"`
	Provider   Provider  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	TokenHash  string    `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	CreatedAt  time.Time
}

func (p *PasswordReset) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

func init() {
	AllModels = append(AllModels, &PasswordReset{})
}
