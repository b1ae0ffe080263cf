package repos

import (
	"context"
	"testing"

	"github.com/yungbote/shadownav-backend/internal/data/db"
	"github.com/yungbote/shadownav-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
)

func TestThreadRepoSlotLookups(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewThreadRepo(gdb, testutil.Logger(t))

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	run := testutil.SeedRun(t, ctx, tx, "mem_thread_slots", 1, types.RunStatusActive)
	testutil.SeedThread(t, ctx, tx, run, types.Step1Slot(1), types.ThreadStatusCompleted)
	testutil.SeedThread(t, ctx, tx, run, types.Step1Slot(2), types.ThreadStatusCompleted)
	active := testutil.SeedThread(t, ctx, tx, run, types.Step2Slot(1), types.ThreadStatusActive)

	got, err := repo.GetBySlot(dbc, run.ID, types.Step1Slot(2))
	if err != nil {
		t.Fatalf("GetBySlot step1: %v", err)
	}
	if got == nil || got.QuestionNo == nil || *got.QuestionNo != 2 {
		t.Fatalf("expected question 2, got %+v", got)
	}

	got, err = repo.GetBySlot(dbc, run.ID, types.Step2Slot(1))
	if err != nil {
		t.Fatalf("GetBySlot step2: %v", err)
	}
	if got == nil || got.ID != active.ID {
		t.Fatalf("expected session 1 thread, got %+v", got)
	}

	gotActive, err := repo.GetActiveByRun(dbc, run.ID)
	if err != nil {
		t.Fatalf("GetActiveByRun: %v", err)
	}
	if gotActive == nil || gotActive.ID != active.ID {
		t.Fatalf("expected active thread %s, got %+v", active.ID, gotActive)
	}

	maxQ, err := repo.MaxQuestionNo(dbc, run.ID)
	if err != nil {
		t.Fatalf("MaxQuestionNo: %v", err)
	}
	maxS, err := repo.MaxSessionNo(dbc, run.ID)
	if err != nil {
		t.Fatalf("MaxSessionNo: %v", err)
	}
	if maxQ != 2 || maxS != 1 {
		t.Fatalf("expected maxima (2, 1), got (%d, %d)", maxQ, maxS)
	}

	list, err := repo.ListByRun(dbc, run.ID)
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 threads, got %d", len(list))
	}
	if list[0].Step != 1 || list[1].Step != 1 || list[2].Step != 2 {
		t.Fatalf("expected step 1 threads before step 2, got %+v", list)
	}
}

func TestThreadRepoSingleActivePerRun(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewThreadRepo(gdb, testutil.Logger(t))

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	run := testutil.SeedRun(t, ctx, tx, "mem_thread_active", 1, types.RunStatusActive)
	testutil.SeedThread(t, ctx, tx, run, types.Step1Slot(1), types.ThreadStatusActive)

	two := 2
	err := repo.Insert(dbc, &types.Thread{
		RunID:      run.ID,
		UserID:     run.UserID,
		Step:       1,
		QuestionNo: &two,
		Status:     types.ThreadStatusActive,
	})
	if !db.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation for second active thread, got %v", err)
	}
}

func TestThreadRepoSlotUniquePerRun(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewThreadRepo(gdb, testutil.Logger(t))

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	run := testutil.SeedRun(t, ctx, tx, "mem_thread_slot_unique", 1, types.RunStatusActive)
	testutil.SeedThread(t, ctx, tx, run, types.Step1Slot(1), types.ThreadStatusCompleted)

	one := 1
	err := repo.Insert(dbc, &types.Thread{
		RunID:      run.ID,
		UserID:     run.UserID,
		Step:       1,
		QuestionNo: &one,
		Status:     types.ThreadStatusCompleted,
	})
	if !db.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation for duplicate slot, got %v", err)
	}
}

func TestThreadRepoGetByIDForUser(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewThreadRepo(gdb, testutil.Logger(t))

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	run := testutil.SeedRun(t, ctx, tx, "mem_thread_owner", 1, types.RunStatusActive)
	th := testutil.SeedThread(t, ctx, tx, run, types.Step1Slot(1), types.ThreadStatusActive)

	got, err := repo.GetByIDForUser(dbc, th.ID, run.UserID)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if got == nil || got.ID != th.ID {
		t.Fatalf("expected thread %s, got %+v", th.ID, got)
	}

	// Another member must not see it.
	got, err = repo.GetByIDForUser(dbc, th.ID, "mem_somebody_else")
	if err != nil {
		t.Fatalf("GetByIDForUser other user: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for foreign thread, got %+v", got)
	}
}
