package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every booking entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Salon{},
		&Service{},
		&Appointment{},
	)
}
