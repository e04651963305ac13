// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

const (
	AnonymousCustomer = "Anonymous"
	MinScore          = 1
	MaxScore          = 5
)

type Rating struct {
	ID           uint     `gorm:"primaryKey"`
	ProviderID   uint     `gorm:"not null;index"`
	Provider     Provider `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CustomerName string   `gorm:"default:'Anonymous'"`
	Score        int      `gorm:"column:rating;not null;check:rating BETWEEN 1 AND 5"`
	Comment      string
	CreatedAt    time.Time
}

func init() {
	AllModels = append(AllModels, &Rating{})
}
