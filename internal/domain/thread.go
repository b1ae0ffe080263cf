package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ThreadStatusActive    = "active"
	ThreadStatusCompleted = "completed"
)

// Thread is one guided conversation within a run, pinned to a curriculum
// slot. Uniqueness of the slot within a run and of the single active thread
// per run are both enforced by partial unique indexes; concurrent creators
// race on the insert and the loser reconciles to the winner's row.
type Thread struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RunID  uuid.UUID `gorm:"type:uuid;not null;index;index:idx_threads_run_question,unique,priority:1,where:step = 1;index:idx_threads_run_session,unique,priority:1,where:step = 2;index:idx_threads_run_active,unique,where:status = 'active'" json:"run_id"`
	UserID string    `gorm:"type:text;not null;index" json:"user_id"`

	Step       int  `gorm:"column:step;not null" json:"step"`
	QuestionNo *int `gorm:"column:question_no;index:idx_threads_run_question,unique,priority:2,where:step = 1" json:"question_no"`
	SessionNo  *int `gorm:"column:session_no;index:idx_threads_run_session,unique,priority:2,where:step = 2" json:"session_no"`

	Status string `gorm:"column:status;not null;default:'active';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Thread) TableName() string { return "threads" }

// Slot reconstructs the tagged curriculum position from the stored columns.
func (t *Thread) Slot() Slot {
	if t.Step == 1 && t.QuestionNo != nil {
		return Step1Slot(*t.QuestionNo)
	}
	if t.Step == 2 && t.SessionNo != nil {
		return Step2Slot(*t.SessionNo)
	}
	return Slot{Step: t.Step}
}
