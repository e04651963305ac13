// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"fmt"
	"laundrolink-server/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "001_create_marketplace_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(models.AllModels...)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&models.PasswordReset{},
					&models.ReviewToken{},
					&models.Rating{},
					&models.Provider{},
				)
			},
		},
		{
			// Some rows were written with services as a JSON array.
			ID: "002_normalize_services",
			Migrate: func(tx *gorm.DB) error {
				var rows []struct {
					ID       uint
					Services models.ServiceList
				}
				if err := tx.Table("providers").Select("id", "services").Find(&rows).Error; err != nil {
					return fmt.Errorf("failed to fetch providers: %w", err)
				}

				for _, row := range rows {
					if err := tx.Table("providers").Where("id = ?", row.ID).
						Update("services", row.Services).Error; err != nil {
						return fmt.Errorf("update provider %d: %w", row.ID, err)
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
	}
}

func Run(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, List())
	return m.Migrate()
}
