package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/http"
	httpH "github.com/yungbote/shadownav-backend/internal/http/handlers"
	httpMW "github.com/yungbote/shadownav-backend/internal/http/middleware"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
	Paid *httpMW.PaidMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	Run         *httpH.RunHandler
	Thread      *httpH.ThreadHandler
	Message     *httpH.MessageHandler
	Card        *httpH.CardHandler
	Entitlement *httpH.EntitlementHandler
	Billing     *httpH.BillingHandler
	LLM         *httpH.LLMHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Auth:        httpH.NewAuthHandler(services.Auth),
		Run:         httpH.NewRunHandler(services.Run),
		Thread:      httpH.NewThreadHandler(services.Thread),
		Message:     httpH.NewMessageHandler(services.Message),
		Card:        httpH.NewCardHandler(services.Card),
		Entitlement: httpH.NewEntitlementHandler(log, services.Entitlement),
		Billing:     httpH.NewBillingHandler(log, services.Billing),
		LLM:         httpH.NewLLMHandler(services.LLM),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
		Paid: httpMW.NewPaidMiddleware(log, services.Entitlement),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                log,
		AuthMW:             middleware.Auth,
		PaidMW:             middleware.Paid,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		RunHandler:         handlers.Run,
		ThreadHandler:      handlers.Thread,
		MessageHandler:     handlers.Message,
		CardHandler:        handlers.Card,
		EntitlementHandler: handlers.Entitlement,
		BillingHandler:     handlers.Billing,
		LLMHandler:         handlers.LLM,
	})
}
