package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/shadownav-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
)

func TestWebhookEventRepoRecordOnce(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewWebhookEventRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	ev := &types.StripeWebhookEvent{
		EventID:   "evt_test_once",
		EventType: "checkout.session.completed",
		Payload:   datatypes.JSON([]byte(`{"id":"evt_test_once"}`)),
	}

	exists, err := repo.Exists(dbc, ev.EventID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatalf("expected event to be unknown")
	}

	inserted, err := repo.Record(dbc, ev)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !inserted {
		t.Fatalf("expected first record to insert")
	}

	inserted, err = repo.Record(dbc, &types.StripeWebhookEvent{
		EventID:   "evt_test_once",
		EventType: "checkout.session.completed",
		Payload:   datatypes.JSON([]byte(`{}`)),
	})
	if err != nil {
		t.Fatalf("Record replay: %v", err)
	}
	if inserted {
		t.Fatalf("expected replayed record to be a no-op")
	}

	exists, err = repo.Exists(dbc, ev.EventID)
	if err != nil {
		t.Fatalf("Exists after record: %v", err)
	}
	if !exists {
		t.Fatalf("expected event to be recorded")
	}
}
