// SPDX-License-Identifier: GPL-3.0-only

// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"laundrolink-server/db"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"
)

var counter atomic.Int64

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, counter.Add(1))

	conn, err := db.Open(db.Config{Dialect: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.MigrateDB(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func Gateway(t testing.TB) db.Gateway {
	return db.NewGateway(Open(t))
}
