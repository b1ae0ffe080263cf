package db

import (
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Curriculum progression
		&types.Run{},
		&types.Thread{},
		&types.Message{},
		&types.Card{},

		// Entitlement + payment ledger
		&types.UserFlag{},
		&types.StripeWebhookEvent{},
	)
}
