package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/shadownav-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
)

func newMessageService(env *testEnv, llm *fakeLLM) MessageService {
	return NewMessageService(env.db, env.log, env.runs, env.threads, env.messages, env.program, llm)
}

func TestMessageServiceAppendIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := newMessageService(env, &fakeLLM{})

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)
	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)
	th := testutil.SeedThread(t, ctx, env.db, run, types.Step1Slot(1), types.ThreadStatusActive)

	payload := testutil.EncryptedPayload(1)
	first, err := svc.Append(ctx, userID, th.ID, "user", "cmid-1", payload)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first.Status != AppendInserted || first.Message.Seq != 1 {
		t.Fatalf("expected inserted seq 1, got %+v", first)
	}

	// A retry of the same client_message_id returns the stored row.
	replay, err := svc.Append(ctx, userID, th.ID, "user", "cmid-1", testutil.EncryptedPayload(2))
	if err != nil {
		t.Fatalf("Append replay: %v", err)
	}
	if replay.Status != AppendDuplicate {
		t.Fatalf("expected duplicate, got %+v", replay)
	}
	if replay.Message.ID != first.Message.ID || replay.Message.Ciphertext != first.Message.Ciphertext {
		t.Fatalf("expected original message back, got %+v", replay.Message)
	}
}

func TestMessageServiceAppendStaleThread(t *testing.T) {
	env := newTestEnv(t)
	svc := newMessageService(env, &fakeLLM{})

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)
	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)
	testutil.SeedThread(t, ctx, env.db, run, types.Step1Slot(1), types.ThreadStatusActive)

	_, err := svc.Append(ctx, userID, uuid.New(), "user", "cmid-stale", testutil.EncryptedPayload(1))
	if !errors.Is(err, ErrStaleThread) {
		t.Fatalf("expected ErrStaleThread, got %v", err)
	}
}

func TestMessageServiceAppendConcurrent(t *testing.T) {
	env := newTestEnv(t)
	svc := newMessageService(env, &fakeLLM{})

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)
	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)
	th := testutil.SeedThread(t, ctx, env.db, run, types.Step1Slot(1), types.ThreadStatusActive)

	// Writers that lose the seq race on every bounded retry surface an
	// error; what must hold is that every stored row has a dense seq.
	const writers = 8
	var (
		g         errgroup.Group
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			_, err := svc.Append(ctx, userID, th.ID, "user", fmt.Sprintf("cmid-c-%d", i), testutil.EncryptedPayload(i))
			if err != nil {
				if strings.Contains(err.Error(), "failed to append message") {
					return nil
				}
				return err
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Append: %v", err)
	}
	if succeeded == 0 {
		t.Fatalf("no append succeeded")
	}

	list, err := env.messages.ListByThread(dbctx.Context{Ctx: ctx}, th.ID, 0)
	if err != nil {
		t.Fatalf("ListByThread: %v", err)
	}
	if len(list) != succeeded {
		t.Fatalf("expected %d messages, got %d", succeeded, len(list))
	}
	for i, m := range list {
		if m.Seq != int64(i+1) {
			t.Fatalf("expected dense seq 1..%d, got %+v at %d", succeeded, m.Seq, i)
		}
	}
}

func TestMessageServiceChatAndNext(t *testing.T) {
	env := newTestEnv(t)
	llm := &fakeLLM{reply: "それは大切な気づきですね。"}
	svc := newMessageService(env, llm)

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)

	if _, err := svc.Chat(ctx, userID, "こんにちは"); !errors.Is(err, ErrNoActiveRun) {
		t.Fatalf("expected ErrNoActiveRun, got %v", err)
	}

	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)
	th := testutil.SeedThread(t, ctx, env.db, run, types.Step1Slot(3), types.ThreadStatusActive)

	chat, err := svc.Chat(ctx, userID, "こんにちは")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if chat.Reply != llm.reply || chat.Thread.ID != th.ID {
		t.Fatalf("unexpected chat result %+v", chat)
	}

	next, err := svc.Next(ctx, userID)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next.Reply != env.program.NextReply(th.Slot()) {
		t.Fatalf("expected canned reply for slot, got %q", next.Reply)
	}
}

func TestMessageServiceChatUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := newMessageService(env, &fakeLLM{err: fmt.Errorf("boom")})

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)
	run := testutil.SeedRun(t, ctx, env.db, userID, 1, types.RunStatusActive)
	testutil.SeedThread(t, ctx, env.db, run, types.Step1Slot(1), types.ThreadStatusActive)

	_, err := svc.Chat(ctx, userID, "hello")
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Service != "openai" {
		t.Fatalf("expected openai upstream error, got %v", err)
	}
}
