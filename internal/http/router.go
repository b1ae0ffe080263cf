package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/shadownav-backend/internal/http/handlers"
	"github.com/yungbote/shadownav-backend/internal/http/middleware"
	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMW *middleware.AuthMiddleware
	PaidMW *middleware.PaidMiddleware

	HealthHandler      *handlers.HealthHandler
	AuthHandler        *handlers.AuthHandler
	RunHandler         *handlers.RunHandler
	ThreadHandler      *handlers.ThreadHandler
	MessageHandler     *handlers.MessageHandler
	CardHandler        *handlers.CardHandler
	EntitlementHandler *handlers.EntitlementHandler
	BillingHandler     *handlers.BillingHandler
	LLMHandler         *handlers.LLMHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("shadownav-backend"))
	r.Use(middleware.AttachTraceContext())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(cfg.Log))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.RespondError(c, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed, fmt.Errorf("method not allowed"))
	})
	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, http.StatusNotFound, response.CodeNotFound, fmt.Errorf("not found"))
	})

	r.GET("/", cfg.HealthHandler.HealthCheck)
	r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := r.Group("/api")
	{
		api.POST("/auth/exchange", cfg.AuthHandler.Exchange)
		api.POST("/stripe/webhook", cfg.BillingHandler.Webhook)
	}

	// Authenticated but not entitlement-gated: entitlement checks, admin
	// overrides and checkout creation must work for unpaid members.
	authed := api.Group("")
	authed.Use(cfg.AuthMW.RequireAuth())
	{
		authed.GET("/paid", cfg.EntitlementHandler.Paid)
		authed.POST("/admin/set_paid", cfg.EntitlementHandler.SetPaid)
		authed.POST("/checkout/session", cfg.BillingHandler.CreateCheckoutSession)
	}

	paid := api.Group("")
	paid.Use(cfg.AuthMW.RequireAuth(), cfg.PaidMW.RequirePaid())
	{
		paid.POST("/run/start", cfg.RunHandler.Start)
		paid.POST("/run/restart", cfg.RunHandler.Restart)
		paid.GET("/runs/list", cfg.RunHandler.List)

		paid.POST("/thread/start", cfg.ThreadHandler.Start)
		paid.POST("/thread/close", cfg.ThreadHandler.Close)
		paid.GET("/thread/state", cfg.ThreadHandler.State)
		paid.GET("/threads/list", cfg.ThreadHandler.List)
		paid.GET("/thread/messages", cfg.ThreadHandler.Messages)

		paid.POST("/thread/chat", cfg.MessageHandler.Chat)
		paid.POST("/thread/message", cfg.MessageHandler.Append)

		paid.GET("/thread/context_card", cfg.CardHandler.GetContextCard)
		paid.POST("/thread/context_card", cfg.CardHandler.UpsertContextCard)
		paid.GET("/run/step2_meta_card", cfg.CardHandler.GetStep2MetaCard)
		paid.POST("/run/step2_meta_card", cfg.CardHandler.UpsertStep2MetaCard)

		paid.POST("/llm/ping", cfg.LLMHandler.Ping)
		paid.POST("/llm/respond", cfg.LLMHandler.Respond)
	}

	return r
}
