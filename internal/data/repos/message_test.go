package repos

import (
	"context"
	"testing"

	"github.com/yungbote/shadownav-backend/internal/data/db"
	"github.com/yungbote/shadownav-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
)

func newTestMessage(th *types.Thread, clientMessageID string) *types.Message {
	return &types.Message{
		RunID:           th.RunID,
		ThreadID:        th.ID,
		UserID:          th.UserID,
		Role:            "user",
		ClientMessageID: clientMessageID,
		Ciphertext:      "ct",
		IV:              "iv",
		Alg:             "AES-GCM",
		V:               1,
	}
}

func TestMessageRepoInsertWithSeqAssignsSequentially(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewMessageRepo(gdb, testutil.Logger(t))

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	run := testutil.SeedRun(t, ctx, tx, "mem_msg_seq", 1, types.RunStatusActive)
	th := testutil.SeedThread(t, ctx, tx, run, types.Step1Slot(1), types.ThreadStatusActive)

	for i, id := range []string{"cmid-a", "cmid-b", "cmid-c"} {
		msg := newTestMessage(th, id)
		if err := repo.InsertWithSeq(dbc, msg); err != nil {
			t.Fatalf("InsertWithSeq %s: %v", id, err)
		}
		if msg.Seq != int64(i+1) {
			t.Fatalf("expected seq %d for %s, got %d", i+1, id, msg.Seq)
		}
	}
}

func TestMessageRepoClientMessageIDUnique(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewMessageRepo(gdb, testutil.Logger(t))

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	run := testutil.SeedRun(t, ctx, tx, "mem_msg_dedupe", 1, types.RunStatusActive)
	th := testutil.SeedThread(t, ctx, tx, run, types.Step1Slot(1), types.ThreadStatusActive)

	first := newTestMessage(th, "cmid-dup")
	if err := repo.InsertWithSeq(dbc, first); err != nil {
		t.Fatalf("InsertWithSeq: %v", err)
	}

	// Savepoint so the expected violation does not abort the test tx.
	if err := tx.SavePoint("before_dup").Error; err != nil {
		t.Fatalf("savepoint: %v", err)
	}
	err := repo.InsertWithSeq(dbc, newTestMessage(th, "cmid-dup"))
	if !db.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation for replayed client_message_id, got %v", err)
	}
	if err := tx.RollbackTo("before_dup").Error; err != nil {
		t.Fatalf("rollback to savepoint: %v", err)
	}

	existing, err := repo.GetByClientMessageID(dbc, th.ID, "cmid-dup")
	if err != nil {
		t.Fatalf("GetByClientMessageID: %v", err)
	}
	if existing == nil || existing.ID != first.ID {
		t.Fatalf("expected original row back, got %+v", existing)
	}
}

func TestMessageRepoListAndLast(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewMessageRepo(gdb, testutil.Logger(t))

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	run := testutil.SeedRun(t, ctx, tx, "mem_msg_list", 1, types.RunStatusActive)
	th := testutil.SeedThread(t, ctx, tx, run, types.Step1Slot(1), types.ThreadStatusActive)
	for seq := int64(1); seq <= 4; seq++ {
		testutil.SeedMessage(t, ctx, tx, th, seq, "user")
	}

	list, err := repo.ListByThread(dbc, th.ID, 0)
	if err != nil {
		t.Fatalf("ListByThread: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(list))
	}
	for i, m := range list {
		if m.Seq != int64(i+1) {
			t.Fatalf("expected seq ASC, got %+v", list)
		}
	}

	limited, err := repo.ListByThread(dbc, th.ID, 2)
	if err != nil {
		t.Fatalf("ListByThread limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(limited))
	}

	last, err := repo.LastByThread(dbc, th.ID)
	if err != nil {
		t.Fatalf("LastByThread: %v", err)
	}
	if last == nil || last.Seq != 4 {
		t.Fatalf("expected seq 4 last, got %+v", last)
	}

	cnt, err := repo.CountByThread(dbc, th.ID)
	if err != nil {
		t.Fatalf("CountByThread: %v", err)
	}
	if cnt != 4 {
		t.Fatalf("expected 4, got %d", cnt)
	}
}
