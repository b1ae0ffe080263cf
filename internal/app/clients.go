package app

import (
	"fmt"

	"github.com/yungbote/shadownav-backend/internal/clients/memberstack"
	"github.com/yungbote/shadownav-backend/internal/clients/openai"
	"github.com/yungbote/shadownav-backend/internal/clients/stripe"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

type Clients struct {
	OpenAI      openai.Client
	Stripe      stripe.Client
	Memberstack memberstack.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	oa, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	st, err := stripe.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init stripe client: %w", err)
	}
	ms, err := memberstack.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init memberstack client: %w", err)
	}

	return Clients{OpenAI: oa, Stripe: st, Memberstack: ms}, nil
}
