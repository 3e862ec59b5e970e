package db

import (
	"github.com/psehrawa/opportunities-finder/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Opportunity{},
		&models.SourceState{},
		&models.SystemSetting{},
	)
}
