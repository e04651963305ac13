// SPDX-License-Identifier: GPL-3.0-only

// Package store holds the provider and rating queries.
package store

import (
	"laundrolink-server/db"
)

const (
	SortByDate         = "date"
	SortByRating       = "rating"
	SortAlphabetically = "alphabetical"
)

type Store struct {
	gw db.Gateway
}

func New(gw db.Gateway) *Store {
	return &Store{gw: gw}
}

// WithGateway returns a Store running on gw, typically a transaction.
func (s *Store) WithGateway(gw db.Gateway) *Store {
	return &Store{gw: gw}
}

func (s *Store) Gateway() db.Gateway {
	return s.gw
}
