package repos

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

type WebhookEventRepo interface {
	Exists(dbc dbctx.Context, eventID string) (bool, error)
	// Record inserts the event id into the ledger. Returns false when the id
	// was already recorded, meaning the event was processed before.
	Record(dbc dbctx.Context, ev *types.StripeWebhookEvent) (bool, error)
}

type webhookEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWebhookEventRepo(db *gorm.DB, log *logger.Logger) WebhookEventRepo {
	return &webhookEventRepo{db: db, log: log.With("repo", "WebhookEventRepo")}
}

func (r *webhookEventRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *webhookEventRepo) Exists(dbc dbctx.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, fmt.Errorf("missing event_id")
	}
	var cnt int64
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.StripeWebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *webhookEventRepo) Record(dbc dbctx.Context, ev *types.StripeWebhookEvent) (bool, error) {
	if ev == nil || ev.EventID == "" {
		return false, fmt.Errorf("missing event_id")
	}
	res := r.conn(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
