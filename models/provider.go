// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

var AllModels []any

const (
	DefaultCountryCode = "+254"
	DefaultProfilePic  = "profile_placeholder.png"
)

type Provider struct {
	ID          uint        `gorm:"primaryKey"`
	Name        string      `gorm:"not null"`
	CountryCode string      `gorm:"size:10;not null;default:'+254'"`
	Area        string      `gorm:"not null"`
	PricePerKg  float64     `gorm:"not null;default:0"`
	DeliveryFee float64     `gorm:"not null;default:0"`
	Services    ServiceList `gorm:"type:text;not null"`
	Phone       string      `gorm:"size:20;not null;uniqueIndex"`
	Password    string      `gorm:"not null"`
	Description string
	ProfilePic  string `gorm:"default:'profile_placeholder.png'"`
	CreatedAt   time.Time
}

// ProviderSummary is a provider row joined with its rating aggregates.
type ProviderSummary struct {
	Provider
	AvgRating  float64
	NumReviews int64
}

func init() {
	AllModels = append(AllModels, &Provider{})
}
