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

type CardRepo interface {
	Insert(dbc dbctx.Context, card *types.Card) error
	GetByThreadKind(dbc dbctx.Context, threadID uuid.UUID, kind string) (*types.Card, error)
	GetByRunKind(dbc dbctx.Context, runID uuid.UUID, kind string) (*types.Card, error)
	UpdateContent(dbc dbctx.Context, id uuid.UUID, payload types.EncryptedPayload) error
}

type cardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCardRepo(db *gorm.DB, log *logger.Logger) CardRepo {
	return &cardRepo{db: db, log: log.With("repo", "CardRepo")}
}

func (r *cardRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *cardRepo) Insert(dbc dbctx.Context, card *types.Card) error {
	if card == nil {
		return fmt.Errorf("missing card")
	}
	return r.conn(dbc).WithContext(dbc.Ctx).Create(card).Error
}

func (r *cardRepo) GetByThreadKind(dbc dbctx.Context, threadID uuid.UUID, kind string) (*types.Card, error) {
	if threadID == uuid.Nil {
		return nil, fmt.Errorf("missing thread_id")
	}
	var out types.Card
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("thread_id = ? AND kind = ?", threadID, kind).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *cardRepo) GetByRunKind(dbc dbctx.Context, runID uuid.UUID, kind string) (*types.Card, error) {
	if runID == uuid.Nil {
		return nil, fmt.Errorf("missing run_id")
	}
	var out types.Card
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("run_id = ? AND thread_id IS NULL AND kind = ?", runID, kind).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *cardRepo) UpdateContent(dbc dbctx.Context, id uuid.UUID, payload types.EncryptedPayload) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Card{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ciphertext": payload.Ciphertext,
			"iv":         payload.IV,
			"alg":        payload.Alg,
			"v":          payload.V,
			"kid":        payload.KID,
			"updated_at": time.Now().UTC(),
		}).Error
}
