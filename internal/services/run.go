package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/shadownav-backend/internal/data/db"
	"github.com/yungbote/shadownav-backend/internal/data/repos"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

// RunService owns the run lifecycle: one active run per user, run_no
// monotonically increasing per user.
type RunService interface {
	Start(ctx context.Context, userID string) (*types.Run, error)
	Restart(ctx context.Context, userID string) (*types.Run, error)
	List(ctx context.Context, userID string) ([]*types.Run, error)
	Active(ctx context.Context, userID string) (*types.Run, error)
}

type runService struct {
	db   *gorm.DB
	log  *logger.Logger
	runs repos.RunRepo
}

func NewRunService(gdb *gorm.DB, log *logger.Logger, runs repos.RunRepo) RunService {
	return &runService{db: gdb, log: log.With("service", "RunService"), runs: runs}
}

func (s *runService) Start(ctx context.Context, userID string) (*types.Run, error) {
	dbc := dbctx.Context{Ctx: ctx}

	active, err := s.runs.GetActiveByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveRunExists
	}

	cnt, err := s.runs.CountByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrRunExists
	}

	return s.createRun(ctx, userID)
}

func (s *runService) Restart(ctx context.Context, userID string) (*types.Run, error) {
	dbc := dbctx.Context{Ctx: ctx}

	active, err := s.runs.GetActiveByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveRunExists
	}

	return s.createRun(ctx, userID)
}

func (s *runService) List(ctx context.Context, userID string) ([]*types.Run, error) {
	return s.runs.ListByUser(dbctx.Context{Ctx: ctx}, userID)
}

func (s *runService) Active(ctx context.Context, userID string) (*types.Run, error) {
	return s.runs.GetActiveByUser(dbctx.Context{Ctx: ctx}, userID)
}

// createRun inserts optimistically and lets the partial unique indexes
// arbitrate. Losing the active-run race returns the winner's row; losing the
// run_no race retries with a fresh number.
func (s *runService) createRun(ctx context.Context, userID string) (*types.Run, error) {
	dbc := dbctx.Context{Ctx: ctx}
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		maxNo, err := s.runs.MaxRunNo(dbc, userID)
		if err != nil {
			return nil, err
		}

		run := &types.Run{
			ID:     uuid.New(),
			UserID: userID,
			RunNo:  maxNo + 1,
			Status: types.RunStatusActive,
		}

		err = s.runs.Insert(dbc, run)
		if err == nil {
			return run, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, err
		}

		// Another writer created the active run first.
		active, getErr := s.runs.GetActiveByUser(dbc, userID)
		if getErr != nil {
			return nil, getErr
		}
		if active != nil {
			return active, nil
		}

		s.log.Warn("run insert conflict, retrying",
			"user_id", userID,
			"run_no", run.RunNo,
			"constraint", db.ConstraintName(err),
		)
	}

	return nil, fmt.Errorf("failed to create run after %d attempts", maxAttempts)
}
