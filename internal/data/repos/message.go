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

type MessageRepo interface {
	// InsertWithSeq assigns the next per-thread seq inside the INSERT itself
	// and returns the stored row. A (thread_id, seq) unique violation means
	// another writer took the slot first; the caller retries.
	InsertWithSeq(dbc dbctx.Context, msg *types.Message) error
	GetByClientMessageID(dbc dbctx.Context, threadID uuid.UUID, clientMessageID string) (*types.Message, error)
	ListByThread(dbc dbctx.Context, threadID uuid.UUID, limit int) ([]*types.Message, error)
	LastByThread(dbc dbctx.Context, threadID uuid.UUID) (*types.Message, error)
	CountByThread(dbc dbctx.Context, threadID uuid.UUID) (int64, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *messageRepo) InsertWithSeq(dbc dbctx.Context, msg *types.Message) error {
	if msg == nil {
		return fmt.Errorf("missing message")
	}
	if msg.ThreadID == uuid.Nil {
		return fmt.Errorf("missing thread_id")
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	now := time.Now().UTC()
	row := r.conn(dbc).WithContext(dbc.Ctx).Raw(`
		INSERT INTO messages
			(id, run_id, thread_id, user_id, role, client_message_id,
			 ciphertext, iv, alg, v, kid, created_at,
			 seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE thread_id = ?))
		RETURNING seq`,
		msg.ID, msg.RunID, msg.ThreadID, msg.UserID, msg.Role, msg.ClientMessageID,
		msg.Ciphertext, msg.IV, msg.Alg, msg.V, msg.KID, now,
		msg.ThreadID,
	).Row()
	if err := row.Scan(&msg.Seq); err != nil {
		return err
	}
	msg.CreatedAt = now
	return nil
}

func (r *messageRepo) GetByClientMessageID(dbc dbctx.Context, threadID uuid.UUID, clientMessageID string) (*types.Message, error) {
	if threadID == uuid.Nil {
		return nil, fmt.Errorf("missing thread_id")
	}
	if clientMessageID == "" {
		return nil, fmt.Errorf("missing client_message_id")
	}
	var out types.Message
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("thread_id = ? AND client_message_id = ?", threadID, clientMessageID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *messageRepo) ListByThread(dbc dbctx.Context, threadID uuid.UUID, limit int) ([]*types.Message, error) {
	if threadID == uuid.Nil {
		return nil, fmt.Errorf("missing thread_id")
	}
	q := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Message{}).
		Where("thread_id = ?", threadID).
		Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Message
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) LastByThread(dbc dbctx.Context, threadID uuid.UUID) (*types.Message, error) {
	if threadID == uuid.Nil {
		return nil, fmt.Errorf("missing thread_id")
	}
	var out types.Message
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("thread_id = ?", threadID).
		Order("seq DESC").
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *messageRepo) CountByThread(dbc dbctx.Context, threadID uuid.UUID) (int64, error) {
	if threadID == uuid.Nil {
		return 0, fmt.Errorf("missing thread_id")
	}
	var cnt int64
	if err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Message{}).
		Where("thread_id = ?", threadID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
