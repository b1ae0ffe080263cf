package domain

import (
	"time"

	"gorm.io/datatypes"
)

// StripeWebhookEvent is the idempotency ledger for at-least-once webhook
// delivery: an event id seen here is acknowledged without reprocessing.
type StripeWebhookEvent struct {
	EventID   string         `gorm:"type:text;primaryKey" json:"event_id"`
	EventType string         `gorm:"column:event_type;type:text;not null" json:"event_type"`
	Payload   datatypes.JSON `gorm:"type:jsonb;column:payload;not null;default:'{}'" json:"payload,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (StripeWebhookEvent) TableName() string { return "stripe_webhook_events" }
