package database

import (
	"busline/internal/checkout"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&checkout.Attempt{},
	)
}
