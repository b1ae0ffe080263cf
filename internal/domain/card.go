package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	CardKindContext   = "context_card"
	CardKindStep2Meta = "step2_meta_card"
)

// Card is an encrypted snapshot note, scoped either to a thread
// (context_card) or to a run (step2_meta_card, thread_id NULL). One row per
// scope+kind; writes are last-writer-wins overwrites, not an append log.
type Card struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RunID    uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_cards_run_kind,unique,priority:1,where:thread_id IS NULL" json:"run_id"`
	ThreadID *uuid.UUID `gorm:"type:uuid;index;index:idx_cards_thread_kind,unique,priority:1,where:thread_id IS NOT NULL" json:"thread_id"`
	UserID   string     `gorm:"type:text;not null;index" json:"user_id"`

	Kind string `gorm:"column:kind;type:text;not null;index:idx_cards_thread_kind,unique,priority:2,where:thread_id IS NOT NULL;index:idx_cards_run_kind,unique,priority:2,where:thread_id IS NULL" json:"kind"`

	Ciphertext string  `gorm:"column:ciphertext;type:text;not null" json:"ciphertext"`
	IV         string  `gorm:"column:iv;type:text;not null" json:"iv"`
	Alg        string  `gorm:"column:alg;type:text;not null" json:"alg"`
	V          int     `gorm:"column:v;not null" json:"v"`
	KID        *string `gorm:"column:kid;type:text" json:"kid"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Card) TableName() string { return "cards" }

func (c *Card) Payload() EncryptedPayload {
	return EncryptedPayload{
		Ciphertext: c.Ciphertext,
		IV:         c.IV,
		Alg:        c.Alg,
		V:          c.V,
		KID:        c.KID,
	}
}
