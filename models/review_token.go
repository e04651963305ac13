// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

// ReviewToken authorizes a single rating submission. The token is stored in
// clear and the row is deleted when it is used.
type ReviewToken struct {
	ID         uint      `gorm:"primaryKey"`
	ProviderID uint      `gorm:"not null;index"`
	Provider   Provider  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token      string    `gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt  time.Time `gorm:"not null"`
	CreatedAt  time.Time
}

func (t *ReviewToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func init() {
	AllModels = append(AllModels, &ReviewToken{})
}
