package repos

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

type ThreadRepo interface {
	Insert(dbc dbctx.Context, thread *types.Thread) error
	GetActiveByRun(dbc dbctx.Context, runID uuid.UUID) (*types.Thread, error)
	GetBySlot(dbc dbctx.Context, runID uuid.UUID, slot types.Slot) (*types.Thread, error)
	GetByIDForUser(dbc dbctx.Context, id uuid.UUID, userID string) (*types.Thread, error)
	ListByRun(dbc dbctx.Context, runID uuid.UUID) ([]*types.Thread, error)
	MaxQuestionNo(dbc dbctx.Context, runID uuid.UUID) (int, error)
	MaxSessionNo(dbc dbctx.Context, runID uuid.UUID) (int, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error
}

type threadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThreadRepo(db *gorm.DB, log *logger.Logger) ThreadRepo {
	return &threadRepo{db: db, log: log.With("repo", "ThreadRepo")}
}

func (r *threadRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *threadRepo) Insert(dbc dbctx.Context, thread *types.Thread) error {
	if thread == nil {
		return fmt.Errorf("missing thread")
	}
	return r.conn(dbc).WithContext(dbc.Ctx).Create(thread).Error
}

func (r *threadRepo) GetActiveByRun(dbc dbctx.Context, runID uuid.UUID) (*types.Thread, error) {
	if runID == uuid.Nil {
		return nil, fmt.Errorf("missing run_id")
	}
	var out types.Thread
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("run_id = ? AND status = ?", runID, types.ThreadStatusActive).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *threadRepo) GetBySlot(dbc dbctx.Context, runID uuid.UUID, slot types.Slot) (*types.Thread, error) {
	if runID == uuid.Nil {
		return nil, fmt.Errorf("missing run_id")
	}
	q := r.conn(dbc).WithContext(dbc.Ctx).Where("run_id = ? AND step = ?", runID, slot.Step)
	switch slot.Step {
	case 1:
		q = q.Where("question_no = ?", slot.Number)
	case 2:
		q = q.Where("session_no = ?", slot.Number)
	default:
		return nil, fmt.Errorf("invalid step %d", slot.Step)
	}
	var out types.Thread
	err := q.Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *threadRepo) GetByIDForUser(dbc dbctx.Context, id uuid.UUID, userID string) (*types.Thread, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	var out types.Thread
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *threadRepo) ListByRun(dbc dbctx.Context, runID uuid.UUID) ([]*types.Thread, error) {
	if runID == uuid.Nil {
		return nil, fmt.Errorf("missing run_id")
	}
	var out []*types.Thread
	// Curriculum order, not creation order.
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Thread{}).
		Where("run_id = ?", runID).
		Order("step ASC").
		Order("COALESCE(question_no, session_no) ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *threadRepo) MaxQuestionNo(dbc dbctx.Context, runID uuid.UUID) (int, error) {
	if runID == uuid.Nil {
		return 0, fmt.Errorf("missing run_id")
	}
	var maxNo int
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Thread{}).
		Select("COALESCE(MAX(question_no), 0)").
		Where("run_id = ? AND step = 1", runID).
		Scan(&maxNo).Error; err != nil {
		return 0, err
	}
	return maxNo, nil
}

func (r *threadRepo) MaxSessionNo(dbc dbctx.Context, runID uuid.UUID) (int, error) {
	if runID == uuid.Nil {
		return 0, fmt.Errorf("missing run_id")
	}
	var maxNo int
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Thread{}).
		Select("COALESCE(MAX(session_no), 0)").
		Where("run_id = ? AND step = 2", runID).
		Scan(&maxNo).Error; err != nil {
		return 0, err
	}
	return maxNo, nil
}

func (r *threadRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Thread{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
