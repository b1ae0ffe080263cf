package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/shadownav-backend/internal/clients/memberstack"
	stripeclient "github.com/yungbote/shadownav-backend/internal/clients/stripe"
	"github.com/yungbote/shadownav-backend/internal/data/repos"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
	"github.com/yungbote/shadownav-backend/internal/utils"
)

// BillingService creates checkout sessions and processes Stripe webhooks.
// Webhook delivery is at-least-once; the event ledger makes processing
// idempotent.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, memberID string) (*stripeclient.CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

type billingService struct {
	db            *gorm.DB
	log           *logger.Logger
	stripe        stripeclient.Client
	events        repos.WebhookEventRepo
	entitlements  EntitlementService
	webhookSecret string
}

func NewBillingService(
	gdb *gorm.DB,
	log *logger.Logger,
	stripe stripeclient.Client,
	events repos.WebhookEventRepo,
	entitlements EntitlementService,
) (BillingService, error) {
	l := log.With("service", "BillingService")

	secret := utils.GetEnv("STRIPE_WEBHOOK_SECRET", "", l)
	if secret == "" {
		return nil, fmt.Errorf("missing STRIPE_WEBHOOK_SECRET")
	}

	return &billingService{
		db:            gdb,
		log:           l,
		stripe:        stripe,
		events:        events,
		entitlements:  entitlements,
		webhookSecret: secret,
	}, nil
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, memberID string) (*stripeclient.CheckoutSession, error) {
	if !memberstack.ValidMemberID(memberID) {
		return nil, fmt.Errorf("invalid member_id format")
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, memberID)
	if err != nil {
		return nil, upstream("stripe", err)
	}
	return session, nil
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if signatureHeader == "" {
		return fmt.Errorf("%w: missing Stripe-Signature", ErrWebhookRejected)
	}
	if err := stripeclient.VerifySignature(payload, signatureHeader, s.webhookSecret, time.Now(), stripeclient.SignatureTolerance); err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookRejected, err)
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: invalid JSON", ErrWebhookRejected)
	}
	if event.ID == "" {
		return fmt.Errorf("%w: event id missing", ErrWebhookRejected)
	}

	dbc := dbctx.Context{Ctx: ctx}

	// Replays acknowledge immediately.
	seen, err := s.events.Exists(dbc, event.ID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	if event.Type == "checkout.session.completed" {
		if err := s.grantFromCheckoutSession(ctx, event.Data.Object.ID); err != nil {
			return err
		}
	}

	eventType := event.Type
	if eventType == "" {
		eventType = "unknown"
	}
	_, err = s.events.Record(dbc, &types.StripeWebhookEvent{
		EventID:   event.ID,
		EventType: eventType,
		Payload:   datatypes.JSON(payload),
	})
	return err
}

// grantFromCheckoutSession re-fetches the session from Stripe rather than
// trusting the webhook body, then checks payment status and price before
// flipping the paid flag for client_reference_id.
func (s *billingService) grantFromCheckoutSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id missing", ErrWebhookRejected)
	}

	session, err := s.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return upstream("stripe", err)
	}

	if session.PaymentStatus != "paid" {
		return fmt.Errorf("%w: payment not paid", ErrWebhookRejected)
	}
	if session.ClientReferenceID == "" {
		return fmt.Errorf("%w: client_reference_id not found", ErrWebhookRejected)
	}
	if !session.HasPrice(s.stripe.PriceID()) {
		return fmt.Errorf("%w: price mismatch", ErrWebhookRejected)
	}

	s.log.Info("granting paid access", "user_id", session.ClientReferenceID)
	return s.entitlements.SetPaid(ctx, session.ClientReferenceID, true)
}
