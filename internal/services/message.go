package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/shadownav-backend/internal/clients/openai"
	"github.com/yungbote/shadownav-backend/internal/curriculum"
	"github.com/yungbote/shadownav-backend/internal/data/db"
	"github.com/yungbote/shadownav-backend/internal/data/repos"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

const (
	AppendInserted  = "inserted"
	AppendDuplicate = "duplicate"
)

type AppendResult struct {
	Run     *types.Run
	Thread  *types.Thread
	Message *types.Message
	Status  string
}

type ChatResult struct {
	Run    *types.Run
	Thread *types.Thread
	Reply  string
}

// MessageService appends encrypted turns to the active thread and produces
// model replies for it. Appends are idempotent on client_message_id.
type MessageService interface {
	Append(ctx context.Context, userID string, threadID uuid.UUID, role, clientMessageID string, payload types.EncryptedPayload) (*AppendResult, error)
	// Chat returns a model reply without persisting anything; the client
	// encrypts and stores turns through Append.
	Chat(ctx context.Context, userID, message string) (*ChatResult, error)
	// Next returns the canned transition reply for the active slot.
	Next(ctx context.Context, userID string) (*ChatResult, error)
}

type messageService struct {
	db       *gorm.DB
	log      *logger.Logger
	runs     repos.RunRepo
	threads  repos.ThreadRepo
	messages repos.MessageRepo
	program  *curriculum.Config
	llm      openai.Client
}

func NewMessageService(
	gdb *gorm.DB,
	log *logger.Logger,
	runs repos.RunRepo,
	threads repos.ThreadRepo,
	messages repos.MessageRepo,
	program *curriculum.Config,
	llm openai.Client,
) MessageService {
	return &messageService{
		db:       gdb,
		log:      log.With("service", "MessageService"),
		runs:     runs,
		threads:  threads,
		messages: messages,
		program:  program,
		llm:      llm,
	}
}

func (s *messageService) activeThread(ctx context.Context, userID string) (*types.Run, *types.Thread, error) {
	dbc := dbctx.Context{Ctx: ctx}

	run, err := s.runs.GetActiveByUser(dbc, userID)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, ErrNoActiveRun
	}

	thread, err := s.threads.GetActiveByRun(dbc, run.ID)
	if err != nil {
		return nil, nil, err
	}
	if thread == nil {
		return nil, nil, ErrNoActiveThread
	}
	return run, thread, nil
}

func (s *messageService) Append(ctx context.Context, userID string, threadID uuid.UUID, role, clientMessageID string, payload types.EncryptedPayload) (*AppendResult, error) {
	dbc := dbctx.Context{Ctx: ctx}

	run, thread, err := s.activeThread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if thread.ID != threadID {
		return nil, ErrStaleThread
	}

	const maxAttempts = 3
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		msg := &types.Message{
			ID:              uuid.New(),
			RunID:           run.ID,
			ThreadID:        thread.ID,
			UserID:          userID,
			Role:            role,
			ClientMessageID: clientMessageID,
			Ciphertext:      payload.Ciphertext,
			IV:              payload.IV,
			Alg:             payload.Alg,
			V:               payload.V,
			KID:             payload.KID,
		}

		err := s.messages.InsertWithSeq(dbc, msg)
		if err == nil {
			return &AppendResult{Run: run, Thread: thread, Message: msg, Status: AppendInserted}, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
		lastErr = err

		// A client retry collides on (thread_id, client_message_id): answer
		// with the stored row. A seq collision means a concurrent writer
		// took the slot; try again.
		existing, getErr := s.messages.GetByClientMessageID(dbc, thread.ID, clientMessageID)
		if getErr != nil {
			return nil, getErr
		}
		if existing != nil {
			return &AppendResult{Run: run, Thread: thread, Message: existing, Status: AppendDuplicate}, nil
		}

		s.log.Warn("message seq conflict, retrying",
			"thread_id", thread.ID,
			"attempt", attempt+1,
			"constraint", db.ConstraintName(err),
		)
	}

	return nil, fmt.Errorf("failed to append message after %d attempts: %w", maxAttempts, lastErr)
}

func (s *messageService) Chat(ctx context.Context, userID, message string) (*ChatResult, error) {
	run, thread, err := s.activeThread(ctx, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.llm.Respond(ctx, s.program.SystemPrompt(thread.Slot()), message)
	if err != nil {
		return nil, upstream("openai", err)
	}
	return &ChatResult{Run: run, Thread: thread, Reply: reply}, nil
}

func (s *messageService) Next(ctx context.Context, userID string) (*ChatResult, error) {
	run, thread, err := s.activeThread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ChatResult{Run: run, Thread: thread, Reply: s.program.NextReply(thread.Slot())}, nil
}
