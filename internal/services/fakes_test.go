package services

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	stripeclient "github.com/yungbote/shadownav-backend/internal/clients/stripe"
	"github.com/yungbote/shadownav-backend/internal/curriculum"
	"github.com/yungbote/shadownav-backend/internal/data/repos"
	"github.com/yungbote/shadownav-backend/internal/data/repos/testutil"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Model() string { return "test-model" }

func (f *fakeLLM) Respond(ctx context.Context, system, user string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) RespondRaw(ctx context.Context, input string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Ping(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "pong", nil
}

type fakeMemberstack struct {
	memberID string
	err      error
}

func (f *fakeMemberstack) VerifyToken(ctx context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.memberID, nil
}

type fakeStripe struct {
	priceID  string
	session  *stripeclient.CheckoutSession
	fetchErr error
	fetched  int
}

func (f *fakeStripe) PriceID() string { return f.priceID }

func (f *fakeStripe) CreateCheckoutSession(ctx context.Context, memberID string) (*stripeclient.CheckoutSession, error) {
	return &stripeclient.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/test", ClientReferenceID: memberID}, nil
}

func (f *fakeStripe) GetCheckoutSession(ctx context.Context, sessionID string) (*stripeclient.CheckoutSession, error) {
	f.fetched++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.session == nil {
		return nil, fmt.Errorf("no session %s", sessionID)
	}
	return f.session, nil
}

func paidCheckoutSession(memberID, priceID string) *stripeclient.CheckoutSession {
	s := &stripeclient.CheckoutSession{
		ID:                "cs_test_paid",
		PaymentStatus:     "paid",
		ClientReferenceID: memberID,
	}
	s.LineItems.Data = []struct {
		Price struct {
			ID string `json:"id"`
		} `json:"price"`
	}{{}}
	s.LineItems.Data[0].Price.ID = priceID
	return s
}

type testEnv struct {
	db       *gorm.DB
	log      *logger.Logger
	runs     repos.RunRepo
	threads  repos.ThreadRepo
	messages repos.MessageRepo
	cards    repos.CardRepo
	flags    repos.UserFlagRepo
	events   repos.WebhookEventRepo
	program  *curriculum.Config
}

func newTestEnv(tb testing.TB) *testEnv {
	tb.Helper()
	gdb := testutil.DB(tb)
	log := testutil.Logger(tb)
	program, err := curriculum.Load()
	if err != nil {
		tb.Fatalf("load curriculum: %v", err)
	}
	return &testEnv{
		db:       gdb,
		log:      log,
		runs:     repos.NewRunRepo(gdb, log),
		threads:  repos.NewThreadRepo(gdb, log),
		messages: repos.NewMessageRepo(gdb, log),
		cards:    repos.NewCardRepo(gdb, log),
		flags:    repos.NewUserFlagRepo(gdb, log),
		events:   repos.NewWebhookEventRepo(gdb, log),
		program:  program,
	}
}
