// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventProviderRegistered     = "provider.registered"
	EventRatingCreated          = "rating.created"
	EventReviewTokenIssued      = "review_token.issued"
	EventPasswordResetRequested = "password_reset.requested"
	EventPasswordResetCompleted = "password_reset.completed"
)

// Event is a marketplace event published to the events exchange
type Event struct {
	// EID is the unique event identifier
	EID string `json:"eid"`
	// Type is also used as the routing key
	Type       string         `json:"type"`
	ProviderID uint           `json:"provider_id"`
	Data       map[string]any `json:"data,omitempty"`
	// Timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent creates a new event with a generated event ID
func NewEvent(eventType string, providerID uint, data map[string]any) *Event {
	return &Event{
		EID:        uuid.New().String(),
		Type:       eventType,
		ProviderID: providerID,
		Data:       data,
		CreatedAt:  time.Now().UTC(),
	}
}
