// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"context"
	"laundrolink-server/models"
)

const DefaultExchange = "laundrolink.events"

type Config struct {
	URL      string
	Exchange string
}

// Publisher delivers domain events. The routing key is the event type.
type Publisher interface {
	Publish(ctx context.Context, event *models.Event) error
	Close() error
}
