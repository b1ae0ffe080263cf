package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusActive    = "active"
	RunStatusCompleted = "completed"
)

// Run is one user's pass through the full curriculum. run_no counts a
// user's runs from 1; at most one run per user is active, enforced by a
// partial unique index rather than application locking.
type Run struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID string    `gorm:"type:text;not null;index;index:idx_runs_user_run_no,unique,priority:1;index:idx_runs_user_active,unique,where:status = 'active'" json:"user_id"`
	RunNo  int       `gorm:"column:run_no;not null;index:idx_runs_user_run_no,unique,priority:2" json:"run_no"`

	Status string `gorm:"column:status;not null;default:'active';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Run) TableName() string { return "runs" }
