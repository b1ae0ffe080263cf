package services

import (
	"context"
	"testing"

	"github.com/yungbote/shadownav-backend/internal/data/repos/testutil"
)

func TestEntitlementServiceDefaultsToUnpaid(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEntitlementService(env.db, env.log, env.flags)

	ctx := context.Background()
	userID := testutil.UniqueUserID(t, env.db)

	paid, err := svc.Paid(ctx, userID)
	if err != nil {
		t.Fatalf("Paid: %v", err)
	}
	if paid {
		t.Fatalf("expected missing flag to read as unpaid")
	}

	if err := svc.SetPaid(ctx, userID, true); err != nil {
		t.Fatalf("SetPaid: %v", err)
	}
	paid, err = svc.Paid(ctx, userID)
	if err != nil {
		t.Fatalf("Paid after set: %v", err)
	}
	if !paid {
		t.Fatalf("expected paid=true")
	}

	if err := svc.SetPaid(ctx, userID, false); err != nil {
		t.Fatalf("SetPaid revoke: %v", err)
	}
	paid, err = svc.Paid(ctx, userID)
	if err != nil {
		t.Fatalf("Paid after revoke: %v", err)
	}
	if paid {
		t.Fatalf("expected paid=false after revoke")
	}
}
