package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/shadownav-backend/internal/curriculum"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
	"github.com/yungbote/shadownav-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Run         services.RunService
	Thread      services.ThreadService
	Message     services.MessageService
	Card        services.CardService
	Entitlement services.EntitlementService
	Billing     services.BillingService
	LLM         services.LLMService
}

func wireServices(
	gdb *gorm.DB,
	log *logger.Logger,
	r Repos,
	c Clients,
	program *curriculum.Config,
) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(log, c.Memberstack)
	if err != nil {
		return Services{}, err
	}

	entitlement := services.NewEntitlementService(gdb, log, r.UserFlag)

	billing, err := services.NewBillingService(gdb, log, c.Stripe, r.WebhookEvent, entitlement)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Auth:        auth,
		Run:         services.NewRunService(gdb, log, r.Run),
		Thread:      services.NewThreadService(gdb, log, r.Run, r.Thread, r.Message, program),
		Message:     services.NewMessageService(gdb, log, r.Run, r.Thread, r.Message, program, c.OpenAI),
		Card:        services.NewCardService(gdb, log, r.Run, r.Thread, r.Card),
		Entitlement: entitlement,
		Billing:     billing,
		LLM:         services.NewLLMService(log, c.OpenAI),
	}, nil
}
