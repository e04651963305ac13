// SPDX-License-Identifier: GPL-3.0-only

package db

import (
	"context"
	"errors"
	"laundrolink-server/models"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway runs parameterized statements against the relational store. Queries
// use ? placeholders; the dialector rewrites them for the backend.
type Gateway interface {
	// QueryOne scans the first row into dest and returns models.ErrNotFound
	// when there is none.
	QueryOne(ctx context.Context, dest any, query string, args ...any) error
	QueryAll(ctx context.Context, dest any, query string, args ...any) error
	// Execute returns the number of affected rows.
	Execute(ctx context.Context, query string, args ...any) (int64, error)
	// Insert stores a model and fills its generated primary key.
	Insert(ctx context.Context, record any) error
	// Transaction runs fn against a gateway bound to a single transaction.
	Transaction(ctx context.Context, fn func(tx Gateway) error) error
	Ping(ctx context.Context) error
}

type gormGateway struct {
	conn *gorm.DB
}

func NewGateway(conn *gorm.DB) Gateway {
	return &gormGateway{conn: conn}
}

func (g *gormGateway) QueryOne(ctx context.Context, dest any, query string, args ...any) error {
	res := g.conn.WithContext(ctx).Raw(query, args...).Scan(dest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (g *gormGateway) QueryAll(ctx context.Context, dest any, query string, args ...any) error {
	return g.conn.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}

func (g *gormGateway) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res := g.conn.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

func (g *gormGateway) Insert(ctx context.Context, record any) error {
	return g.conn.WithContext(ctx).Omit(clause.Associations).Create(record).Error
}

func (g *gormGateway) Transaction(ctx context.Context, fn func(tx Gateway) error) error {
	return g.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormGateway{conn: tx})
	})
}

func (g *gormGateway) Ping(ctx context.Context) error {
	sqlDB, err := g.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
