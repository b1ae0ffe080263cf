package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/shadownav-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shadownav-backend/internal/domain"
)

func newThreadService(env *testEnv) ThreadService {
	return NewThreadService(env.db, env.log, env.runs, env.threads, env.messages, env.program)
}

func TestThreadServiceStartAndClose(t *testing.T) {
	env := newTestEnv(t)
	svc := newThreadService(env)

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)

	if _, _, err := svc.Start(ctx, userID); !errors.Is(err, ErrNoActiveRun) {
		t.Fatalf("expected ErrNoActiveRun, got %v", err)
	}

	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)

	_, th1, err := svc.Start(ctx, userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if th1.Step != 1 || th1.QuestionNo == nil || *th1.QuestionNo != 1 {
		t.Fatalf("expected question 1, got %+v", th1)
	}

	// Starting again returns the open thread instead of advancing.
	_, again, err := svc.Start(ctx, userID)
	if err != nil {
		t.Fatalf("Start again: %v", err)
	}
	if again.ID != th1.ID {
		t.Fatalf("expected same thread, got %s and %s", th1.ID, again.ID)
	}

	gotRun, closed, err := svc.Close(ctx, userID)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.ID != th1.ID || closed.Status != types.ThreadStatusCompleted {
		t.Fatalf("expected thread completed, got %+v", closed)
	}
	if gotRun.ID != run.ID || gotRun.Status != types.RunStatusActive {
		t.Fatalf("expected run still active, got %+v", gotRun)
	}

	if _, _, err := svc.Close(ctx, userID); !errors.Is(err, ErrNoActiveThread) {
		t.Fatalf("expected ErrNoActiveThread, got %v", err)
	}

	_, th2, err := svc.Start(ctx, userID)
	if err != nil {
		t.Fatalf("Start after close: %v", err)
	}
	if th2.Step != 1 || th2.QuestionNo == nil || *th2.QuestionNo != 2 {
		t.Fatalf("expected question 2, got %+v", th2)
	}
}

func TestThreadServiceCloseFinalSlotCompletesRun(t *testing.T) {
	env := newTestEnv(t)
	svc := newThreadService(env)

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)

	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)
	testutil.SeedThread(t, ctx, env.db, run, types.Step2Slot(env.program.Sessions()), types.ThreadStatusActive)

	gotRun, closed, err := svc.Close(ctx, userID)
	if err != nil {
		t.Fatalf("Close final slot: %v", err)
	}
	if closed.Status != types.ThreadStatusCompleted {
		t.Fatalf("expected thread completed, got %+v", closed)
	}
	if gotRun.Status != types.RunStatusCompleted {
		t.Fatalf("expected run completed with its last thread, got %+v", gotRun)
	}

	// State for a completed run carries no thread.
	stateRun, stateThread, lastMsg, err := svc.State(ctx, userID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if stateRun == nil || stateRun.Status != types.RunStatusCompleted {
		t.Fatalf("expected completed run, got %+v", stateRun)
	}
	if stateThread != nil || lastMsg != nil {
		t.Fatalf("expected no thread or message for completed run, got %+v / %+v", stateThread, lastMsg)
	}
}

func TestThreadServiceStartAfterLastQuestionOpensFirstSession(t *testing.T) {
	env := newTestEnv(t)
	svc := newThreadService(env)

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)

	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)
	for q := 1; q <= env.program.Questions(); q++ {
		testutil.SeedThread(t, ctx, env.db, run, types.Step1Slot(q), types.ThreadStatusCompleted)
	}

	// With every question visited, the next slot is the first session.
	_, th, err := svc.Start(ctx, userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if th.Step != 2 || th.SessionNo == nil || *th.SessionNo != 1 {
		t.Fatalf("expected session 1, got %+v", th)
	}
	if th.QuestionNo != nil {
		t.Fatalf("expected no question_no on a session thread, got %+v", th)
	}
}

func TestThreadServiceSlotOrdering(t *testing.T) {
	env := newTestEnv(t)
	svc := newThreadService(env)

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)
	testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)

	// Walk every question and the first session, asserting the slot each
	// Start opens.
	want := make([]types.Slot, 0, env.program.Questions()+1)
	for q := 1; q <= env.program.Questions(); q++ {
		want = append(want, types.Step1Slot(q))
	}
	want = append(want, types.Step2Slot(1))

	for _, slot := range want {
		_, th, err := svc.Start(ctx, userID)
		if err != nil {
			t.Fatalf("Start at %+v: %v", slot, err)
		}
		if th.Slot() != slot {
			t.Fatalf("expected slot %+v, got %+v", slot, th.Slot())
		}
		if _, _, err := svc.Close(ctx, userID); err != nil {
			t.Fatalf("Close at %+v: %v", slot, err)
		}
	}
}

func TestThreadServiceStartAfterCurriculumExhausted(t *testing.T) {
	env := newTestEnv(t)
	svc := newThreadService(env)

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)

	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)
	testutil.SeedThread(t, ctx, env.db, run, types.Step1Slot(env.program.Questions()), types.ThreadStatusCompleted)
	testutil.SeedThread(t, ctx, env.db, run, types.Step2Slot(env.program.Sessions()), types.ThreadStatusCompleted)

	gotRun, _, err := svc.Start(ctx, userID)
	if !errors.Is(err, ErrRunCompleted) {
		t.Fatalf("expected ErrRunCompleted, got %v", err)
	}
	if gotRun == nil || gotRun.Status != types.RunStatusCompleted {
		t.Fatalf("expected run marked completed, got %+v", gotRun)
	}
}

func TestThreadServiceStateEmpty(t *testing.T) {
	env := newTestEnv(t)
	svc := newThreadService(env)

	run, thread, last, err := svc.State(context.Background(), testutil.UniqueUserID(t, env.db))
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if run != nil || thread != nil || last != nil {
		t.Fatalf("expected empty state, got %+v / %+v / %+v", run, thread, last)
	}
}

func TestThreadServiceListByRunNo(t *testing.T) {
	env := newTestEnv(t)
	svc := newThreadService(env)

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)

	run1 := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusCompleted)
	testutil.SeedThread(t, ctx, env.db, run1, types.Step1Slot(1), types.ThreadStatusCompleted)
	run2 := testutil.SeedRun(t, ctx, env.db, userID, 2, types.RunStatusActive)
	testutil.SeedThread(t, ctx, env.db, run2, types.Step1Slot(1), types.ThreadStatusActive)

	// No run_no defaults to the active run.
	run, threads, err := svc.List(ctx, userID, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if run.ID != run2.ID || len(threads) != 1 {
		t.Fatalf("expected active run threads, got %+v", run)
	}

	one := 1
	run, threads, err = svc.List(ctx, userID, &one)
	if err != nil {
		t.Fatalf("List run_no=1: %v", err)
	}
	if run.ID != run1.ID || len(threads) != 1 {
		t.Fatalf("expected run 1 threads, got %+v", run)
	}

	// Unknown run_no yields empty, not an error.
	nine := 9
	run, threads, err = svc.List(ctx, userID, &nine)
	if err != nil {
		t.Fatalf("List run_no=9: %v", err)
	}
	if run != nil || len(threads) != 0 {
		t.Fatalf("expected empty result, got %+v / %+v", run, threads)
	}
}
