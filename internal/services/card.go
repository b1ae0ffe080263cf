package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/shadownav-backend/internal/data/db"
	"github.com/yungbote/shadownav-backend/internal/data/repos"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

// CardService stores encrypted snapshot cards: one context_card per thread,
// one step2_meta_card per run. Writes overwrite; there is no history.
type CardService interface {
	GetContextCard(ctx context.Context, userID string, threadID uuid.UUID) (*types.Run, *types.Thread, *types.Card, error)
	UpsertContextCard(ctx context.Context, userID string, threadID uuid.UUID, payload types.EncryptedPayload) (*types.Run, *types.Thread, *types.Card, error)
	GetStep2MetaCard(ctx context.Context, userID string) (*types.Run, *types.Card, error)
	UpsertStep2MetaCard(ctx context.Context, userID string, payload types.EncryptedPayload) (*types.Run, *types.Card, error)
}

type cardService struct {
	db      *gorm.DB
	log     *logger.Logger
	runs    repos.RunRepo
	threads repos.ThreadRepo
	cards   repos.CardRepo
}

func NewCardService(gdb *gorm.DB, log *logger.Logger, runs repos.RunRepo, threads repos.ThreadRepo, cards repos.CardRepo) CardService {
	return &cardService{
		db:      gdb,
		log:     log.With("service", "CardService"),
		runs:    runs,
		threads: threads,
		cards:   cards,
	}
}

func (s *cardService) threadMeta(ctx context.Context, userID string, threadID uuid.UUID) (*types.Run, *types.Thread, error) {
	dbc := dbctx.Context{Ctx: ctx}

	thread, err := s.threads.GetByIDForUser(dbc, threadID, userID)
	if err != nil {
		return nil, nil, err
	}
	if thread == nil {
		return nil, nil, ErrThreadNotFound
	}

	run, err := s.runs.GetByID(dbc, thread.RunID)
	if err != nil {
		return nil, nil, err
	}
	return run, thread, nil
}

func (s *cardService) GetContextCard(ctx context.Context, userID string, threadID uuid.UUID) (*types.Run, *types.Thread, *types.Card, error) {
	run, thread, err := s.threadMeta(ctx, userID, threadID)
	if err != nil {
		return nil, nil, nil, err
	}

	card, err := s.cards.GetByThreadKind(dbctx.Context{Ctx: ctx}, thread.ID, types.CardKindContext)
	if err != nil {
		return nil, nil, nil, err
	}
	if card == nil {
		return nil, nil, nil, ErrCardNotFound
	}
	return run, thread, card, nil
}

func (s *cardService) UpsertContextCard(ctx context.Context, userID string, threadID uuid.UUID, payload types.EncryptedPayload) (*types.Run, *types.Thread, *types.Card, error) {
	run, thread, err := s.threadMeta(ctx, userID, threadID)
	if err != nil {
		return nil, nil, nil, err
	}

	card, err := s.upsert(ctx, &types.Card{
		ID:       uuid.New(),
		RunID:    thread.RunID,
		ThreadID: &thread.ID,
		UserID:   userID,
		Kind:     types.CardKindContext,
	}, payload)
	if err != nil {
		return nil, nil, nil, err
	}
	return run, thread, card, nil
}

func (s *cardService) GetStep2MetaCard(ctx context.Context, userID string) (*types.Run, *types.Card, error) {
	dbc := dbctx.Context{Ctx: ctx}

	run, err := s.runs.GetActiveByUser(dbc, userID)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, ErrNoActiveRun
	}

	card, err := s.cards.GetByRunKind(dbc, run.ID, types.CardKindStep2Meta)
	if err != nil {
		return nil, nil, err
	}
	if card == nil {
		return nil, nil, ErrCardNotFound
	}
	return run, card, nil
}

func (s *cardService) UpsertStep2MetaCard(ctx context.Context, userID string, payload types.EncryptedPayload) (*types.Run, *types.Card, error) {
	dbc := dbctx.Context{Ctx: ctx}

	run, err := s.runs.GetActiveByUser(dbc, userID)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, ErrNoActiveRun
	}

	card, err := s.upsert(ctx, &types.Card{
		ID:     uuid.New(),
		RunID:  run.ID,
		UserID: userID,
		Kind:   types.CardKindStep2Meta,
	}, payload)
	if err != nil {
		return nil, nil, err
	}
	return run, card, nil
}

// upsert writes last-writer-wins: insert, and on losing the unique race,
// overwrite the winner's row.
func (s *cardService) upsert(ctx context.Context, card *types.Card, payload types.EncryptedPayload) (*types.Card, error) {
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.lookup(dbc, card)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		card.Ciphertext = payload.Ciphertext
		card.IV = payload.IV
		card.Alg = payload.Alg
		card.V = payload.V
		card.KID = payload.KID

		insertErr := s.cards.Insert(dbc, card)
		if insertErr == nil {
			return card, nil
		}
		if !db.IsUniqueViolation(insertErr) {
			return nil, insertErr
		}

		existing, err = s.lookup(dbc, card)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, insertErr
		}
	}

	if err := s.cards.UpdateContent(dbc, existing.ID, payload); err != nil {
		return nil, err
	}
	existing.Ciphertext = payload.Ciphertext
	existing.IV = payload.IV
	existing.Alg = payload.Alg
	existing.V = payload.V
	existing.KID = payload.KID
	return existing, nil
}

func (s *cardService) lookup(dbc dbctx.Context, card *types.Card) (*types.Card, error) {
	if card.ThreadID != nil {
		return s.cards.GetByThreadKind(dbc, *card.ThreadID, card.Kind)
	}
	return s.cards.GetByRunKind(dbc, card.RunID, card.Kind)
}
