package repos

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

type UserFlagRepo interface {
	Get(dbc dbctx.Context, userID string) (*types.UserFlag, error)
	SetPaid(dbc dbctx.Context, userID string, paid bool) error
}

type userFlagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserFlagRepo(db *gorm.DB, log *logger.Logger) UserFlagRepo {
	return &userFlagRepo{db: db, log: log.With("repo", "UserFlagRepo")}
}

func (r *userFlagRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *userFlagRepo) Get(dbc dbctx.Context, userID string) (*types.UserFlag, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	var out types.UserFlag
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userFlagRepo) SetPaid(dbc dbctx.Context, userID string, paid bool) error {
	if userID == "" {
		return fmt.Errorf("missing user_id")
	}
	now := time.Now().UTC()
	flag := &types.UserFlag{UserID: userID, Paid: paid, CreatedAt: now, UpdatedAt: now}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"paid": paid, "updated_at": now}),
		}).
		Create(flag).Error
}
