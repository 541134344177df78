package database

import (
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
// Reminder rows are indexed by fire time so the due-batch query stays cheap.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Meeting{},
		&models.Participant{},
		&models.Reminder{},
		&models.NotificationPreference{},
		&models.Notification{},
		&models.PushSubscription{},
	)
}
