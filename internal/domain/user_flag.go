package domain

import "time"

// UserFlag records payment entitlement per Memberstack member id. Absent row
// and paid=false are treated identically by every gate.
type UserFlag struct {
	UserID string `gorm:"type:text;primaryKey" json:"user_id"`
	Paid   bool   `gorm:"column:paid;not null;default:false" json:"paid"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserFlag) TableName() string { return "user_flags" }
