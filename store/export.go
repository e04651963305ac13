// SPDX-License-Identifier: GPL-3.0-only

package store

import (
	"context"
	"fmt"
	"laundrolink-server/db"
)

// BackupTables are exported in this order.
var BackupTables = []string{"providers", "ratings", "review_tokens", "password_resets"}

// Backup maps each table name to its rows, keyed by column name.
type Backup map[string][]map[string]any

// Export reads every row of BackupTables in one transaction so the tables
// agree with each other.
func (s *Store) Export(ctx context.Context) (Backup, error) {
	backup := make(Backup, len(BackupTables))

	err := s.gw.Transaction(ctx, func(tx db.Gateway) error {
		for _, table := range BackupTables {
			rows := []map[string]any{}
			if err := tx.QueryAll(ctx, &rows, "SELECT * FROM "+table+" ORDER BY id"); err != nil {
				return fmt.Errorf("export %s: %w", table, err)
			}
			if rows == nil {
				rows = []map[string]any{}
			}
			for _, row := range rows {
				for column, value := range row {
					if b, ok := value.([]byte); ok {
						row[column] = string(b)
					}
				}
			}
			backup[table] = rows
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return backup, nil
}
