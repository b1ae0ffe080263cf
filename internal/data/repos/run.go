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

type RunRepo interface {
	Insert(dbc dbctx.Context, run *types.Run) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Run, error)
	GetActiveByUser(dbc dbctx.Context, userID string) (*types.Run, error)
	GetByUserAndNo(dbc dbctx.Context, userID string, runNo int) (*types.Run, error)
	GetLatestByUser(dbc dbctx.Context, userID string) (*types.Run, error)
	ListByUser(dbc dbctx.Context, userID string) ([]*types.Run, error)
	CountByUser(dbc dbctx.Context, userID string) (int64, error)
	MaxRunNo(dbc dbctx.Context, userID string) (int, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error
}

type runRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRepo(db *gorm.DB, log *logger.Logger) RunRepo {
	return &runRepo{db: db, log: log.With("repo", "RunRepo")}
}

func (r *runRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *runRepo) Insert(dbc dbctx.Context, run *types.Run) error {
	if run == nil {
		return fmt.Errorf("missing run")
	}
	return r.conn(dbc).WithContext(dbc.Ctx).Create(run).Error
}

func (r *runRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Run, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.Run
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *runRepo) GetActiveByUser(dbc dbctx.Context, userID string) (*types.Run, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	var out types.Run
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("user_id = ? AND status = ?", userID, types.RunStatusActive).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *runRepo) GetByUserAndNo(dbc dbctx.Context, userID string, runNo int) (*types.Run, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	var out types.Run
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("user_id = ? AND run_no = ?", userID, runNo).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *runRepo) GetLatestByUser(dbc dbctx.Context, userID string) (*types.Run, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	var out types.Run
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("run_no DESC").
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *runRepo) ListByUser(dbc dbctx.Context, userID string) ([]*types.Run, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	var out []*types.Run
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Run{}).
		Where("user_id = ?", userID).
		Order("run_no DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *runRepo) CountByUser(dbc dbctx.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("missing user_id")
	}
	var cnt int64
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Run{}).
		Where("user_id = ?", userID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *runRepo) MaxRunNo(dbc dbctx.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("missing user_id")
	}
	var maxNo int
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Run{}).
		Select("COALESCE(MAX(run_no), 0)").
		Where("user_id = ?", userID).
		Scan(&maxNo).Error; err != nil {
		return 0, err
	}
	return maxNo, nil
}

func (r *runRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Run{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
