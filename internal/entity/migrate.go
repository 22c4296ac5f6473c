package entity

import "gorm.io/gorm"

// AutoMigrate creates or updates every table, parents first.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Institution{},
		&Province{},
		&Track{},
		&Subject{},
		&Contest{},
		&Candidate{},
		&Participation{},
		&Document{},
		&Payment{},
		&Admin{},
		&Notification{},
	)
}
