package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/shadownav-backend/internal/curriculum"
	"github.com/yungbote/shadownav-backend/internal/data/db"
	"github.com/yungbote/shadownav-backend/internal/data/repos"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

// ThreadService walks a run through the curriculum: at most one active
// thread, slots filled strictly in order, run completed when the last slot
// closes.
type ThreadService interface {
	// Start returns the active thread, or opens the next curriculum slot.
	// When the curriculum is exhausted it completes the run and returns the
	// completed run alongside ErrRunCompleted.
	Start(ctx context.Context, userID string) (*types.Run, *types.Thread, error)
	Close(ctx context.Context, userID string) (*types.Run, *types.Thread, error)
	State(ctx context.Context, userID string) (*types.Run, *types.Thread, *types.Message, error)
	List(ctx context.Context, userID string, runNo *int) (*types.Run, []*types.Thread, error)
	Messages(ctx context.Context, userID string, threadID uuid.UUID, limit int) (*types.Run, *types.Thread, []*types.Message, error)
}

type threadService struct {
	db       *gorm.DB
	log      *logger.Logger
	runs     repos.RunRepo
	threads  repos.ThreadRepo
	messages repos.MessageRepo
	program  *curriculum.Config
}

func NewThreadService(
	gdb *gorm.DB,
	log *logger.Logger,
	runs repos.RunRepo,
	threads repos.ThreadRepo,
	messages repos.MessageRepo,
	program *curriculum.Config,
) ThreadService {
	return &threadService{
		db:       gdb,
		log:      log.With("service", "ThreadService"),
		runs:     runs,
		threads:  threads,
		messages: messages,
		program:  program,
	}
}

func (s *threadService) Start(ctx context.Context, userID string) (*types.Run, *types.Thread, error) {
	dbc := dbctx.Context{Ctx: ctx}

	run, err := s.runs.GetActiveByUser(dbc, userID)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, ErrNoActiveRun
	}

	active, err := s.threads.GetActiveByRun(dbc, run.ID)
	if err != nil {
		return nil, nil, err
	}
	if active != nil {
		return run, active, nil
	}

	return s.createNextThread(ctx, run)
}

// createNextThread fills the next unvisited slot, or completes the run when
// every slot has been opened.
func (s *threadService) createNextThread(ctx context.Context, run *types.Run) (*types.Run, *types.Thread, error) {
	dbc := dbctx.Context{Ctx: ctx}

	maxQ, err := s.threads.MaxQuestionNo(dbc, run.ID)
	if err != nil {
		return nil, nil, err
	}
	maxS, err := s.threads.MaxSessionNo(dbc, run.ID)
	if err != nil {
		return nil, nil, err
	}

	slot, ok := types.NextSlot(maxQ, maxS, s.program.Questions(), s.program.Sessions())
	if !ok {
		if err := s.runs.UpdateStatus(dbc, run.ID, types.RunStatusCompleted); err != nil {
			return nil, nil, err
		}
		run.Status = types.RunStatusCompleted
		return run, nil, ErrRunCompleted
	}

	thread, err := s.createThreadAtSlot(ctx, run, slot)
	if err != nil {
		return nil, nil, err
	}
	return run, thread, nil
}

// createThreadAtSlot inserts optimistically; the partial unique indexes
// arbitrate races. A loser reconciles to either the same-slot winner or the
// run's current active thread.
func (s *threadService) createThreadAtSlot(ctx context.Context, run *types.Run, slot types.Slot) (*types.Thread, error) {
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.threads.GetBySlot(dbc, run.ID, slot)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	thread := &types.Thread{
		ID:         uuid.New(),
		RunID:      run.ID,
		UserID:     run.UserID,
		Step:       slot.Step,
		QuestionNo: slot.QuestionNo(),
		SessionNo:  slot.SessionNo(),
		Status:     types.ThreadStatusActive,
	}

	err = s.threads.Insert(dbc, thread)
	if err == nil {
		return thread, nil
	}
	if !db.IsUniqueViolation(err) {
		return nil, err
	}

	s.log.Warn("thread insert conflict, reconciling",
		"run_id", run.ID,
		"step", slot.Step,
		"number", slot.Number,
		"constraint", db.ConstraintName(err),
	)

	again, getErr := s.threads.GetBySlot(dbc, run.ID, slot)
	if getErr != nil {
		return nil, getErr
	}
	if again != nil {
		return again, nil
	}

	nowActive, getErr := s.threads.GetActiveByRun(dbc, run.ID)
	if getErr != nil {
		return nil, getErr
	}
	if nowActive != nil {
		return nowActive, nil
	}

	return nil, err
}

func (s *threadService) Close(ctx context.Context, userID string) (*types.Run, *types.Thread, error) {
	var outRun *types.Run
	var outThread *types.Thread

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}

		run, err := s.runs.GetActiveByUser(inner, userID)
		if err != nil {
			return err
		}
		if run == nil {
			return ErrNoActiveRun
		}

		thread, err := s.threads.GetActiveByRun(inner, run.ID)
		if err != nil {
			return err
		}
		if thread == nil {
			return ErrNoActiveThread
		}

		if err := s.threads.UpdateStatus(inner, thread.ID, types.ThreadStatusCompleted); err != nil {
			return err
		}
		thread.Status = types.ThreadStatusCompleted

		// Closing the final slot completes the run in the same transaction.
		if thread.Slot().Last(s.program.Questions(), s.program.Sessions()) {
			if err := s.runs.UpdateStatus(inner, run.ID, types.RunStatusCompleted); err != nil {
				return err
			}
			run.Status = types.RunStatusCompleted
		}

		outRun = run
		outThread = thread
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outRun, outThread, nil
}

func (s *threadService) State(ctx context.Context, userID string) (*types.Run, *types.Thread, *types.Message, error) {
	dbc := dbctx.Context{Ctx: ctx}

	run, err := s.runs.GetActiveByUser(dbc, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if run == nil {
		run, err = s.runs.GetLatestByUser(dbc, userID)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	if run == nil {
		return nil, nil, nil, nil
	}

	// A completed run exposes no thread; the client restarts instead.
	if run.Status == types.RunStatusCompleted {
		return run, nil, nil, nil
	}

	thread, err := s.threads.GetActiveByRun(dbc, run.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if thread == nil {
		return run, nil, nil, nil
	}

	last, err := s.messages.LastByThread(dbc, thread.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return run, thread, last, nil
}

func (s *threadService) List(ctx context.Context, userID string, runNo *int) (*types.Run, []*types.Thread, error) {
	dbc := dbctx.Context{Ctx: ctx}

	var run *types.Run
	var err error
	if runNo != nil {
		run, err = s.runs.GetByUserAndNo(dbc, userID, *runNo)
	} else {
		run, err = s.runs.GetActiveByUser(dbc, userID)
		if err == nil && run == nil {
			run, err = s.runs.GetLatestByUser(dbc, userID)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, []*types.Thread{}, nil
	}

	threads, err := s.threads.ListByRun(dbc, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, threads, nil
}

func (s *threadService) Messages(ctx context.Context, userID string, threadID uuid.UUID, limit int) (*types.Run, *types.Thread, []*types.Message, error) {
	dbc := dbctx.Context{Ctx: ctx}

	thread, err := s.threads.GetByIDForUser(dbc, threadID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if thread == nil {
		return nil, nil, nil, ErrThreadNotFound
	}

	run, err := s.runs.GetByID(dbc, thread.RunID)
	if err != nil {
		return nil, nil, nil, err
	}

	msgs, err := s.messages.ListByThread(dbc, thread.ID, limit)
	if err != nil {
		return nil, nil, nil, err
	}
	return run, thread, msgs, nil
}
